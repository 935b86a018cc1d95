package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Game maps the externally maintained catalog relation. The tracker only ever
// reads it; the catalog service owns writes and schema.
type Game struct {
	ID        string         `gorm:"primaryKey;type:text;comment:赛事唯一标识"`
	Title     string         `gorm:"type:text;not null;comment:赛事标题"`
	StartTime time.Time      `gorm:"type:timestamptz;not null;index;comment:开始时间"`
	EndTime   *time.Time     `gorm:"type:timestamptz;comment:结束时间"`
	Closed    bool           `gorm:"not null;default:false;comment:是否已关闭"`
	Markets   datatypes.JSON `gorm:"type:jsonb;not null;comment:关联市场及结果列表"`
}

func (Game) TableName() string {
	return "games"
}

// GameMarket is one market nested under a game. Catalog entries carry no
// behavior, only data, so the tree is plain structs with optional fields.
type GameMarket struct {
	Type        string        `json:"type"`
	ConditionID string        `json:"condition_id"`
	Outcomes    []GameOutcome `json:"outcomes"`
}

type GameOutcome struct {
	Label   *string `json:"label"`
	TokenID *string `json:"token_id"`
}

const MarketTypeMoneyline = "moneyline"

// DecodeMarkets unmarshals the nested market tree stored on the games row.
func (g *Game) DecodeMarkets() ([]GameMarket, error) {
	if len(g.Markets) == 0 {
		return nil, nil
	}
	var markets []GameMarket
	if err := json.Unmarshal(g.Markets, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
