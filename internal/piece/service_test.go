package piece_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

func TestService_Open(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *piece.MockRepository)
		wantRows  int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Existing",
			setupMock: func(m *piece.MockRepository) {
				m.EXPECT().GetPiece(gomock.Any(), testKey).Return(sampleEntries(), nil)
			},
			wantRows: 2,
		},
		{
			name: "NewPiece",
			setupMock: func(m *piece.MockRepository) {
				m.EXPECT().GetPiece(gomock.Any(), testKey).Return(nil, nil)
			},
			wantRows: 0,
		},
		{
			name: "FetchError",
			setupMock: func(m *piece.MockRepository) {
				m.EXPECT().GetPiece(gomock.Any(), testKey).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := piece.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := piece.NewService(repo)
			sess, err := svc.Open(context.Background(), testKey)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, sess)

				return
			}

			require.NoError(t, err)
			assert.Len(t, sess.Rows(), tt.wantRows)
			assert.Equal(t, testKey, sess.Key())
		})
	}
}

func TestService_Apply_EmptyIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := piece.NewService(piece.NewMockRepository(ctrl))

	res, err := svc.Apply(context.Background(), piece.CommitRequest{Key: testKey})
	require.NoError(t, err)
	assert.Equal(t, piece.CommitResult{}, *res)
}

func TestService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := piece.NewMockRepository(ctrl)
	svc := piece.NewService(repo)

	sess := piece.NewSession(testKey, sampleEntries())
	rows := sess.Rows()
	sess.Dispatch(piece.UpdateRow{UID: rows[0].UID, Patch: piece.Patch{Debit: new("60")}})
	sess.Dispatch(piece.UpdateRow{UID: rows[1].UID, Patch: piece.Patch{Credit: new("60,00")}})

	want := piece.CommitRequest{
		Key:         testKey,
		Description: "correction",
		Changes:     sess.Changes(),
	}
	require.Len(t, want.Changes, 2)

	reloaded := sampleEntries()
	reloaded[0].DebitCents = 6000
	reloaded[1].CreditCents = 6000

	gomock.InOrder(
		repo.EXPECT().Commit(gomock.Any(), want).Return(&piece.CommitResult{Modified: 2}, nil),
		repo.EXPECT().GetPiece(gomock.Any(), testKey).Return(reloaded, nil),
	)

	res, err := svc.Submit(context.Background(), sess, "correction")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Modified)
	assert.Empty(t, sess.Changes())
	assert.Equal(t, "60.00", sess.Rows()[0].Debit)
}

func TestService_Submit_CommitFailureKeepsEdits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := piece.NewMockRepository(ctrl)
	svc := piece.NewService(repo)

	sess := piece.NewSession(testKey, sampleEntries())
	sess.Dispatch(piece.AddRow{Partial: piece.Patch{Debit: new("5")}})
	sess.Dispatch(piece.AddRow{Partial: piece.Patch{Credit: new("5")}})
	before := sess.Rows()

	repo.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(nil, errors.New("conflict"))

	_, err := svc.Submit(context.Background(), sess, "")
	require.Error(t, err)
	assert.Equal(t, before, sess.Rows())
	assert.Len(t, sess.Changes(), 2)
}

func TestService_Submit_NotSubmittable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := piece.NewService(piece.NewMockRepository(ctrl))

	sess := piece.NewSession(testKey, sampleEntries())
	sess.Dispatch(piece.AddRow{Partial: piece.Patch{Debit: new("1")}})

	_, err := svc.Submit(context.Background(), sess, "")
	assert.ErrorIs(t, err, piece.ErrNotSubmittable)
}

func TestService_Commit_ReloadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := piece.NewMockRepository(ctrl)
	svc := piece.NewService(repo)

	req := piece.CommitRequest{Key: testKey, Changes: []piece.Change{piece.DeleteChange{EntryID: 10}}}

	repo.EXPECT().Commit(gomock.Any(), req).Return(&piece.CommitResult{Deleted: 1}, nil)
	repo.EXPECT().GetPiece(gomock.Any(), testKey).Return(nil, errors.New("timeout"))

	res, entries, err := svc.Commit(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload piece")
	assert.Equal(t, 1, res.Deleted)
	assert.Nil(t, entries)
}

func TestService_Apply_RejectsMalformedDate(t *testing.T) {
	type testCase struct {
		name   string
		change piece.Change
	}

	tests := []testCase{
		{name: "Add", change: piece.AddChange{Values: piece.Values{Date: "14/03/2025", AccNum: "606000"}}},
		{name: "Modify", change: piece.ModifyChange{EntryID: 10, Values: piece.Values{Date: "", AccNum: "606000"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := piece.NewService(piece.NewMockRepository(ctrl))

			_, err := svc.Apply(context.Background(), piece.CommitRequest{
				Key:     testKey,
				Changes: []piece.Change{piece.DeleteChange{EntryID: 11}, tt.change},
			})
			require.ErrorIs(t, err, piece.ErrInvalidChange)
			assert.Contains(t, err.Error(), "change 1")
		})
	}
}
