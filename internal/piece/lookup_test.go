package piece_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/compta/internal/account"
	"github.com/MrJamesThe3rd/compta/internal/piece"
)

const lookupDelay = 10 * time.Millisecond

func collect(t *testing.T) (chan piece.AccountResult, func(piece.AccountResult)) {
	t.Helper()

	ch := make(chan piece.AccountResult, 8)

	return ch, func(res piece.AccountResult) { ch <- res }
}

func receive(t *testing.T, ch chan piece.AccountResult) piece.AccountResult {
	t.Helper()

	select {
	case res := <-ch:
		return res
	case <-time.After(time.Second):
		t.Fatal("no lookup result delivered")
	}

	return piece.AccountResult{}
}

func TestAccountLookups_DebouncesPerRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	dir.EXPECT().
		Suggest(gomock.Any(), int64(1), "512", 10).
		Return([]account.Suggestion{{AccountID: 4, AccNum: "512000", AccLib: "Banque"}}, nil)
	dir.EXPECT().
		Lookup(gomock.Any(), int64(1), "512").
		Return(account.LookupResult{}, nil)

	ch, deliver := collect(t)
	l := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: lookupDelay, Limit: 10}, deliver)
	defer l.Close()

	l.Input("row-a", "5")
	l.Input("row-a", "51")
	l.Input("row-a", "512")

	res := receive(t, ch)
	assert.Equal(t, "row-a", res.UID)
	assert.Equal(t, "512", res.Query)
	assert.True(t, res.Resolved)
	assert.False(t, res.Lookup.Exists)
	require.Len(t, res.Suggestions, 1)

	time.Sleep(5 * lookupDelay)
	assert.Empty(t, ch)
}

func TestAccountLookups_ShortQuerySkipsSuggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	dir.EXPECT().
		Lookup(gomock.Any(), int64(1), "6").
		Return(account.LookupResult{}, nil)

	ch, deliver := collect(t)
	l := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: lookupDelay, Limit: 10}, deliver)
	defer l.Close()

	l.Input("row-a", "6")

	res := receive(t, ch)
	assert.Empty(t, res.Suggestions)
	assert.True(t, res.Resolved)
}

func TestAccountLookups_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	dir.EXPECT().
		Suggest(gomock.Any(), int64(1), "401", 10).
		Return(nil, errors.New("directory down"))
	dir.EXPECT().
		Lookup(gomock.Any(), int64(1), "401").
		Return(account.LookupResult{}, errors.New("directory down"))

	ch, deliver := collect(t)
	l := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: lookupDelay, Limit: 10}, deliver)
	defer l.Close()

	l.Input("row-a", "401")

	res := receive(t, ch)
	assert.Empty(t, res.Suggestions)
	assert.False(t, res.Resolved)
}

func TestAccountLookups_CloseCancelsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)

	ch, deliver := collect(t)
	l := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: lookupDelay, Limit: 10}, deliver)

	l.Input("row-a", "401")
	l.Input("row-b", "512")
	assert.True(t, l.Pending("row-a"))

	l.Close()
	time.Sleep(5 * lookupDelay)

	assert.Empty(t, ch)
	assert.False(t, l.Pending("row-a"))
}

func TestSession_LookupRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	dir.EXPECT().
		Suggest(gomock.Any(), testKey.ClientID, "512000", 10).
		Return(nil, nil)
	dir.EXPECT().
		Lookup(gomock.Any(), testKey.ClientID, "512000").
		Return(account.LookupResult{Exists: true, AccountID: 4, AccLib: "Banque"}, nil)

	ch, deliver := collect(t)

	sess := piece.NewSession(testKey, nil)
	sess.AttachLookups(piece.NewAccountLookups(dir, testKey.ClientID, piece.LookupConfig{Delay: lookupDelay, Limit: 10}, deliver))
	defer sess.Close()

	sess.Dispatch(piece.AddRow{})
	uid := sess.Rows()[0].UID

	sess.AccountInput(uid, "512000")
	sess.ApplyAccountResult(receive(t, ch))

	row := sess.Row(uid)
	assert.True(t, row.AccountExists)
	assert.Equal(t, "Banque", row.AccLib)
}

func TestSession_DeleteCancelsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	lookups := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: time.Hour, Limit: 10}, func(piece.AccountResult) {})

	sess := piece.NewSession(testKey, nil)
	sess.AttachLookups(lookups)
	defer sess.Close()

	sess.Dispatch(piece.AddRow{})
	uid := sess.Rows()[0].UID

	sess.AccountInput(uid, "60")
	require.True(t, lookups.Pending(uid))

	sess.Dispatch(piece.DeleteRow{UID: uid, IsNew: true})
	assert.False(t, lookups.Pending(uid))
}

func TestSession_ResetCancelsLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := piece.NewMockAccountDirectory(ctrl)
	lookups := piece.NewAccountLookups(dir, 1, piece.LookupConfig{Delay: time.Hour, Limit: 10}, func(piece.AccountResult) {})

	sess := piece.NewSession(testKey, nil)
	sess.AttachLookups(lookups)
	defer sess.Close()

	sess.Dispatch(piece.AddRow{})
	sess.Dispatch(piece.AddRow{})
	rows := sess.Rows()

	sess.AccountInput(rows[0].UID, "60")
	sess.AccountInput(rows[1].UID, "512")
	require.True(t, lookups.Pending(rows[0].UID))

	sess.Reset(sampleEntries())

	assert.False(t, lookups.Pending(rows[0].UID))
	assert.False(t, lookups.Pending(rows[1].UID))
}

var _ piece.AccountDirectory = (*account.Service)(nil)

func TestAccountService_ServesAsDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().
		Lookup(gomock.Any(), int64(1), "512000").
		Return(account.LookupResult{Exists: true, AccLib: "Banque"}, nil)

	var dir piece.AccountDirectory = account.NewService(repo)

	res, err := dir.Lookup(context.Background(), 1, "512000")
	require.NoError(t, err)
	assert.True(t, res.Exists)
}
