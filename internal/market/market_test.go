package market

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
	"github.com/DhavalSuthar-24/fantasy/internal/models"
	"github.com/DhavalSuthar-24/fantasy/internal/storage/memory"
)

func TestResolvePriceFallsBackToCurrentPrice(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := &models.Player{PositionID: models.Midfielder, CurrentPrice: decimal.RequireFromString("7.5")}
	require.NoError(t, store.CreatePlayer(ctx, p))

	price, err := ResolvePrice(ctx, store, p, 1)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("7.5")))

	require.NoError(t, store.SavePlayerPrice(ctx, &models.PlayerPrice{
		PlayerID: p.ID, GameweekID: 1, Price: decimal.RequireFromString("8.0"),
	}))
	price, err = ResolvePrice(ctx, store, p, 1)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("8")))
}

func TestRefreshTransferVolumes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := logrus.New()
	log.SetOutput(io.Discard)

	gw := &models.Gameweek{Number: 1, Phase: models.PhaseOpen}
	require.NoError(t, store.CreateGameweek(ctx, gw))
	var players []*models.Player
	for i := 0; i < 3; i++ {
		p := &models.Player{PositionID: models.Forward, CurrentPrice: decimal.NewFromInt(int64(5 + i))}
		require.NoError(t, store.CreatePlayer(ctx, p))
		players = append(players, p)
	}
	record := func(out, in *models.Player) {
		require.NoError(t, store.CreateTransfer(ctx, &models.Transfer{
			ID: uuid.New(), ManagerID: 1, GameweekID: gw.ID,
			PlayerOutID: out.ID, PlayerInID: in.ID, TransferredAt: time.Now(),
		}))
	}
	record(players[0], players[1])
	record(players[0], players[1])
	record(players[1], players[2])

	svc := NewService(store, log, 3)
	for i := 0; i < 2; i++ {
		report, err := svc.RefreshTransferVolumes(ctx, gw.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Transfers)
		assert.Equal(t, 3, report.Players)
	}

	row, err := store.GetPlayerPrice(ctx, players[1].ID, gw.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 2, row.TransfersIn)
	assert.Equal(t, 1, row.TransfersOut)
	assert.Equal(t, 1, row.NetTransfers)
	assert.True(t, row.Price.Equal(decimal.NewFromInt(6)))

	row, err = store.GetPlayerPrice(ctx, players[0].ID, gw.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, row.NetTransfers)
}

func TestRefreshTransferVolumesUnknownGameweek(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(memory.New(), log, 1)

	_, err := svc.RefreshTransferVolumes(context.Background(), 42)
	assert.True(t, apperror.HasCode(err, apperror.CodeGameweekNotFound))
}
