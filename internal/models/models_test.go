package models

import (
	"path/filepath"
	"testing"

	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/code-100-precent/LingQfight/pkg/qfight"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Account{}, &Player{}))
	return db
}

func TestNormalizeRole(t *testing.T) {
	for in, want := range map[string]string{"": constants.RolePlayer, "player": constants.RolePlayer, "Admin": constants.RoleAdmin, " ADMIN ": constants.RoleAdmin} {
		got, err := NormalizeRole(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateAccount_Defaults(t *testing.T) {
	db := newTestDB(t)

	account, player, err := CreateAccount(db, "p1", "secret", "Player", "测试玩家001", "admin_test")
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.NotEqual(t, "secret", account.Password)
	assert.True(t, account.CheckPassword("secret"))
	assert.False(t, account.CheckPassword("wrong"))
	assert.False(t, account.IsAdmin())

	loaded, err := GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)
	assert.Equal(t, player.ID, loaded.ID)

	data := loaded.ToData()
	assert.Equal(t, int64(account.ID), data.AccountID)
	assert.Equal(t, "测试玩家001", data.Name)
	assert.Equal(t, 1, data.Level)
	assert.Equal(t, 0, data.Exp)
	assert.Equal(t, 500, data.Gold)
	assert.Equal(t, 5, data.Str)
	assert.Equal(t, 300, data.MaxHP)
	assert.Equal(t, []string{}, data.Weapons)
	assert.Equal(t, map[string]string{"HEAD": "", "BODY": "", "WEAPON": ""}, data.Dressing)
	assert.Equal(t, "admin_test", loaded.CreateBy)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	db := newTestDB(t)

	_, _, err := CreateAccount(db, "p1", "secret", "", "", "admin")
	require.NoError(t, err)
	_, _, err = CreateAccount(db, "p1", "other", "", "", "admin")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var count int64
	db.Model(&Player{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateAccount_EmptyPlayerNameUsesUsername(t *testing.T) {
	db := newTestDB(t)

	_, player, err := CreateAccount(db, "p2", "secret", "Player", "", "admin")
	require.NoError(t, err)
	assert.Equal(t, "p2", player.Name)
}

func TestEnsureAdmin(t *testing.T) {
	db := newTestDB(t)

	created, err := EnsureAdmin(db, "admin_test", "admin123456")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(db, "admin_test", "changed")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := GetAccountByUsername(db, "admin_test")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CheckPassword("admin123456"))

	byID, err := GetAccountByID(db, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin_test", byID.Username)
}

func TestApplyUpdate_OnlyProvidedFields(t *testing.T) {
	db := newTestDB(t)
	account, _, err := CreateAccount(db, "p1", "secret", "Player", "name", "admin")
	require.NoError(t, err)
	player, err := GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)

	err = ApplyUpdate(db, player, qfight.UpdateRequest{
		AccountID: int64(account.ID),
		Level:     qfight.Ptr(10),
		Gold:      qfight.Ptr(1000),
		Str:       qfight.Ptr(15),
		Weapons:   qfight.Ptr([]string{"青龙刀", "金箍棒"}),
		Dressing:  qfight.Ptr(map[string]string{"HEAD": "hat"}),
	}, "p1")
	require.NoError(t, err)

	reloaded, err := GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Level)
	assert.Equal(t, 1000, reloaded.Gold)
	assert.Equal(t, 15, reloaded.Str)
	assert.Equal(t, 5, reloaded.Agi)
	assert.Equal(t, 0, reloaded.Exp)
	assert.Equal(t, StringList{"青龙刀", "金箍棒"}, reloaded.Weapons)
	assert.Equal(t, Dressing{"HEAD": "hat", "BODY": "", "WEAPON": ""}, reloaded.Dressing)
	assert.Equal(t, "p1", reloaded.UpdateBy)

	// explicit zero and empty list are applied
	require.NoError(t, ApplyUpdate(db, reloaded, qfight.UpdateRequest{Gold: qfight.Ptr(0), Weapons: qfight.Ptr([]string{})}, "admin"))
	reloaded, err = GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Gold)
	assert.Equal(t, StringList{}, reloaded.Weapons)
	assert.Equal(t, 10, reloaded.Level)
}

func TestResetPlayer(t *testing.T) {
	db := newTestDB(t)
	account, _, err := CreateAccount(db, "p1", "secret", "Player", "keep me", "admin")
	require.NoError(t, err)
	player, err := GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)
	require.NoError(t, ApplyUpdate(db, player, qfight.UpdateRequest{
		Level:          qfight.Ptr(50),
		Gold:           qfight.Ptr(9999),
		Skills:         qfight.Ptr([]string{"s1"}),
		IsConcentrated: qfight.Ptr(true),
	}, "p1"))

	require.NoError(t, ResetPlayer(db, player, "admin_test"))

	reloaded, err := GetPlayerByAccountID(db, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Level)
	assert.Equal(t, 500, reloaded.Gold)
	assert.Equal(t, StringList{}, reloaded.Skills)
	assert.False(t, reloaded.IsConcentrated)
	assert.Equal(t, "keep me", reloaded.Name)
	assert.Equal(t, "admin_test", reloaded.UpdateBy)
}

func TestJSONColumns_Scan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)
	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)
	require.NoError(t, l.Scan("null"))
	assert.Equal(t, StringList{}, l)
	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("{"))

	var d Dressing
	require.NoError(t, d.Scan(`{"HEAD":"x"}`))
	assert.Equal(t, Dressing{"HEAD": "x"}, d)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	v, err = Dressing(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}
