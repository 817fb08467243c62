//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/models"
)

type staticProvider struct {
	db *database.DB
}

func (p staticProvider) DB(context.Context) (*database.DB, error) {
	return p.db, nil
}

func setupRepositories(t *testing.T) *Repositories {
	t.Helper()
	db := database.SetupTestDB(t)
	repos, err := NewRepositories(staticProvider{db: db})
	require.NoError(t, err)
	return repos
}

func TestSessionAndTradeLifecycle(t *testing.T) {
	repos := setupRepositories(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := &models.Session{
		UserID:          "user-1",
		Name:            "London open",
		StartingCapital: decimal.NewFromInt(1000),
		StartedAt:       time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repos.Session.Create(ctx, session))
	assert.NotEqual(t, uuid.Nil, session.ID)

	trade := &models.Trade{
		UserID:     "user-1",
		SessionID:  &session.ID,
		Symbol:     "EURUSD",
		Direction:  models.TradeDirectionLong,
		EntryPrice: decimal.RequireFromString("1.0850"),
		ExitPrice:  decimal.NewNullDecimal(decimal.RequireFromString("1.0900")),
		Quantity:   decimal.NewFromInt(1000),
		Fees:       decimal.RequireFromString("0.50"),
		OpenedAt:   session.StartedAt.Add(time.Minute),
	}
	trade.Outcome = trade.ResolveOutcome()
	require.NoError(t, repos.Trade.Create(ctx, trade))

	got, err := repos.Trade.GetByID(ctx, "user-1", trade.ID)
	require.NoError(t, err)
	assert.True(t, got.EntryPrice.Equal(trade.EntryPrice))
	assert.True(t, got.ExitPrice.Valid)
	assert.Equal(t, models.TradeOutcomeWin, got.Outcome)

	_, err = repos.Trade.GetByID(ctx, "someone-else", trade.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	bySession, err := repos.Trade.ListBySession(ctx, "user-1", session.ID)
	require.NoError(t, err)
	require.Len(t, bySession, 1)

	trade.Notes = "moved stop"
	require.NoError(t, repos.Trade.Update(ctx, trade))

	filtered, err := repos.Trade.List(ctx, "user-1", TradeFilter{Symbol: "EURUSD", Outcome: models.TradeOutcomeWin})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "moved stop", filtered[0].Notes)

	require.NoError(t, repos.Session.Delete(ctx, "user-1", session.ID))
	detached, err := repos.Trade.GetByID(ctx, "user-1", trade.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.SessionID)

	require.NoError(t, repos.Trade.Delete(ctx, "user-1", trade.ID))
	assert.ErrorIs(t, repos.Trade.Delete(ctx, "user-1", trade.ID), models.ErrNotFound)
}

func TestCalculationObservedProfit(t *testing.T) {
	repos := setupRepositories(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	observed := 11799.69
	withObserved := &models.Calculation{
		UserID: "user-1", Capital: 1000, TotalTrades: 10, Accuracy: 60, RiskRewardRatio: 3,
		Policy: "piecewise", ObservedProfit: &observed,
	}
	without := &models.Calculation{
		UserID: "user-1", Capital: 1000, TotalTrades: 10, Accuracy: 60, RiskRewardRatio: 3,
		Policy: "half",
	}
	require.NoError(t, repos.Calculation.Create(ctx, withObserved))
	require.NoError(t, repos.Calculation.Create(ctx, without))

	all, err := repos.Calculation.List(ctx, "user-1", ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	observedOnly, err := repos.Calculation.ListWithObservedProfit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, observedOnly, 1)
	assert.InDelta(t, observed, *observedOnly[0].ObservedProfit, 1e-9)

	require.NoError(t, repos.Calculation.Delete(ctx, "user-1", without.ID))
	_, err = repos.Calculation.GetByID(ctx, "user-1", without.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTradeCreateRequiresUser(t *testing.T) {
	repos := setupRepositories(t)
	err := repos.Trade.Create(context.Background(), &models.Trade{Symbol: "X"})
	assert.ErrorIs(t, err, models.ErrMissingUser)
}
