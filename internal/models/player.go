package models

import (
	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/code-100-precent/LingQfight/pkg/qfight"
	"gorm.io/gorm"
)

type Player struct {
	BaseModel
	AccountID         uint       `json:"account_id" gorm:"uniqueIndex"`
	Name              string     `json:"name" gorm:"size:128"`
	Level             int        `json:"level"`
	Exp               int        `json:"exp"`
	Gold              int        `json:"gold"`
	Str               int        `json:"str"`
	Agi               int        `json:"agi"`
	Spd               int        `json:"spd"`
	MaxHP             int        `json:"max_hp" gorm:"column:max_hp"`
	Weapons           StringList `json:"weapons" gorm:"type:text"`
	Skills            StringList `json:"skills" gorm:"type:text"`
	Dressing          Dressing   `json:"dressing" gorm:"type:text"`
	UnlockedDressings StringList `json:"unlocked_dressings" gorm:"type:text"`
	IsConcentrated    bool       `json:"is_concentrated"`
}

func NewDefaultPlayer(accountID uint, name string) *Player {
	p := &Player{AccountID: accountID, Name: name}
	p.applyDefaults()
	return p
}

func emptyDressing() Dressing {
	return Dressing{
		constants.DressingHead:   "",
		constants.DressingBody:   "",
		constants.DressingWeapon: "",
	}
}

func (p *Player) applyDefaults() {
	p.Level = constants.DefaultLevel
	p.Exp = constants.DefaultExp
	p.Gold = constants.DefaultGold
	p.Str = constants.DefaultStr
	p.Agi = constants.DefaultAgi
	p.Spd = constants.DefaultSpd
	p.MaxHP = constants.DefaultMaxHP
	p.Weapons = StringList{}
	p.Skills = StringList{}
	p.Dressing = emptyDressing()
	p.UnlockedDressings = StringList{}
	p.IsConcentrated = false
}

// ToData is the wire view of a player
func (p *Player) ToData() qfight.PlayerData {
	dressing := map[string]string(p.Dressing)
	if dressing == nil {
		dressing = map[string]string(emptyDressing())
	}
	return qfight.PlayerData{
		AccountID:         int64(p.AccountID),
		PlayerID:          int64(p.ID),
		Name:              p.Name,
		Level:             p.Level,
		Exp:               p.Exp,
		Gold:              p.Gold,
		Str:               p.Str,
		Agi:               p.Agi,
		Spd:               p.Spd,
		MaxHP:             p.MaxHP,
		Weapons:           nonNil(p.Weapons),
		Skills:            nonNil(p.Skills),
		Dressing:          dressing,
		UnlockedDressings: nonNil(p.UnlockedDressings),
		IsConcentrated:    p.IsConcentrated,
	}
}

func nonNil(l StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

func GetPlayerByAccountID(db *gorm.DB, accountID uint) (*Player, error) {
	var val Player
	result := db.Where("account_id = ?", accountID).Take(&val)
	if result.Error != nil {
		return nil, result.Error
	}
	return &val, nil
}

// ApplyUpdate copies the provided fields of req onto p and persists them
func ApplyUpdate(db *gorm.DB, p *Player, req qfight.UpdateRequest, by string) error {
	if req.Name != nil {
		p.Name = *req.Name
	}
	setInt(&p.Level, req.Level)
	setInt(&p.Exp, req.Exp)
	setInt(&p.Gold, req.Gold)
	setInt(&p.Str, req.Str)
	setInt(&p.Agi, req.Agi)
	setInt(&p.Spd, req.Spd)
	setInt(&p.MaxHP, req.MaxHP)
	if req.Weapons != nil {
		p.Weapons = StringList(*req.Weapons)
	}
	if req.Skills != nil {
		p.Skills = StringList(*req.Skills)
	}
	if req.Dressing != nil {
		merged := emptyDressing()
		for slot, id := range p.Dressing {
			merged[slot] = id
		}
		for slot, id := range *req.Dressing {
			merged[slot] = id
		}
		p.Dressing = merged
	}
	if req.UnlockedDressings != nil {
		p.UnlockedDressings = StringList(*req.UnlockedDressings)
	}
	if req.IsConcentrated != nil {
		p.IsConcentrated = *req.IsConcentrated
	}
	p.UpdateBy = by
	return db.Save(p).Error
}

// ResetPlayer restores the starting stats; the player name is kept
func ResetPlayer(db *gorm.DB, p *Player, by string) error {
	p.applyDefaults()
	p.UpdateBy = by
	return db.Save(p).Error
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
