package logic_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blues/memberadmin/internal/logic"
	"github.com/blues/memberadmin/internal/model"
	"github.com/blues/memberadmin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	db := testutil.NewDB(t)
	settings := logic.NewSettingLogic(db)
	ctx := context.Background()

	shares, err := settings.TotalShares(ctx, d("99"))
	require.NoError(t, err)
	assertDecimal(t, "10", shares)

	_, err = settings.Set(ctx, model.SettingTotalShares, "12.5")
	require.NoError(t, err)
	shares, err = settings.TotalShares(ctx, d("99"))
	require.NoError(t, err)
	assertDecimal(t, "12.5", shares)

	for _, bad := range []string{"0", "-3", "abc", "1.3"} {
		_, err = settings.Set(ctx, model.SettingTotalShares, bad)
		var verr *logic.ValidationError
		assert.ErrorAs(t, err, &verr, bad)
	}

	_, err = settings.Set(ctx, "greeting", "hello")
	require.NoError(t, err)
	value, err := settings.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	_, err = settings.Get(ctx, "missing")
	assert.ErrorIs(t, err, logic.ErrNotFound)

	_, err = settings.Set(ctx, model.SettingCustomButtons, "[]")
	var verr *logic.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, "-100200300", settings.NotifyChannel(ctx, "fallback"))
}

func TestTotalSharesFallsBackWhenUnset(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Where(&model.SystemSettingModel{Key: model.SettingTotalShares}).
		Delete(&model.SystemSettingModel{}).Error)

	shares, err := logic.NewSettingLogic(db).TotalShares(context.Background(), d("8"))
	require.NoError(t, err)
	assertDecimal(t, "8", shares)
}

func testButtonStore(t *testing.T, store logic.ButtonConfigPort) {
	t.Helper()
	ctx := context.Background()
	buttons := logic.NewButtonLogic(store)

	cfg, err := buttons.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultButtonConfig(), cfg)

	saved, err := buttons.Update(ctx, logic.ButtonConfig{Buttons: []logic.Button{
		{ID: "b", Label: "Second", Action: "/b", Order: 2, Enabled: true},
		{ID: "a", Label: "First", Action: "/a", Order: 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
	assert.Equal(t, "a", saved.Buttons[0].ID)

	loaded, err := buttons.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	_, err = buttons.Update(ctx, logic.ButtonConfig{Buttons: []logic.Button{
		{ID: "a", Label: "x", Action: "/a"},
		{ID: "a", Label: "y", Action: "/a"},
	}})
	var verr *logic.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = buttons.Update(ctx, logic.ButtonConfig{Buttons: []logic.Button{{ID: "c", Action: "/c"}}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "label", verr.Field)

	again, err := buttons.Update(ctx, logic.ButtonConfig{})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)
}

func TestSettingButtonStore(t *testing.T) {
	testButtonStore(t, logic.NewSettingButtonStore(testutil.NewDB(t)))
}

func TestFileButtonStore(t *testing.T) {
	testButtonStore(t, logic.NewFileButtonStore(filepath.Join(t.TempDir(), "conf", "buttons.json")))
}
