package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceREST      = "rest"
	SourceWebsocket = "websocket"
	SourceBackfill  = "backfill"
)

type PriceObservation struct {
	MarketID  string          `gorm:"primaryKey;type:text;comment:市场唯一标识"`
	TokenID   string          `gorm:"primaryKey;type:text;comment:合约ID"`
	TS        time.Time       `gorm:"primaryKey;type:timestamptz;comment:采样时间"`
	Outcome   *string         `gorm:"type:text;comment:结果名称"`
	Price     decimal.Decimal `gorm:"type:numeric(10,6);not null;comment:卖方价格"`
	Source    string          `gorm:"type:text;not null;default:rest;comment:数据来源"`
	CreatedAt time.Time       `gorm:"type:timestamptz;not null;comment:写入时间"`
}

func (PriceObservation) TableName() string {
	return "price_observations"
}
