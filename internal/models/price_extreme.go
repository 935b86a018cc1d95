package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceExtreme is derived from the observation stream and can be rebuilt by
// replaying all observations for its key in timestamp order.
type PriceExtreme struct {
	MarketID     string          `gorm:"primaryKey;type:text;comment:市场唯一标识"`
	TokenID      string          `gorm:"primaryKey;type:text;comment:合约ID"`
	Outcome      *string         `gorm:"type:text;comment:结果名称"`
	LowestPrice  decimal.Decimal `gorm:"type:numeric(10,6);not null;comment:最低价"`
	LowestAt     time.Time       `gorm:"type:timestamptz;not null;comment:最低价时间"`
	HighestPrice decimal.Decimal `gorm:"type:numeric(10,6);not null;comment:最高价"`
	HighestAt    time.Time       `gorm:"type:timestamptz;not null;comment:最高价时间"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(10,6);not null;comment:最新价格"`
	CurrentAt    time.Time       `gorm:"type:timestamptz;not null;comment:最新价格时间"`
	FirstSeenAt  time.Time       `gorm:"type:timestamptz;not null;comment:首次记录时间"`
	UpdatedAt    time.Time       `gorm:"type:timestamptz;not null;comment:更新时间"`
}

func (PriceExtreme) TableName() string {
	return "price_extremes"
}
