package api

import (
	"net/http"
	"testing"

	"growth_hub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletResponse struct {
	Wallet domain.Wallet `json:"wallet"`
	Cached bool          `json:"cached"`
}

func TestWalletLifecycleAndCache(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.user(t, "alice", domain.RoleSeller)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/wallet", token, nil).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/wallet", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/wallet", token, nil).Code)

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": 100}).Code)

	first := decode[walletResponse](t, e.do(http.MethodGet, "/wallet", token, nil))
	assert.Equal(t, 100.0, first.Wallet.Balance)
	assert.False(t, first.Cached)
	second := decode[walletResponse](t, e.do(http.MethodGet, "/wallet", token, nil))
	assert.True(t, second.Cached)

	// A deposit drops the cached wallet.
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": 50.5}).Code)
	third := decode[walletResponse](t, e.do(http.MethodGet, "/wallet", token, nil))
	assert.Equal(t, 150.5, third.Wallet.Balance)
	assert.False(t, third.Cached)
}

func TestDepositRejectsBadAmounts(t *testing.T) {
	e := newTestEnv(t)
	alice, token := e.user(t, "alice", domain.RoleSeller)
	e.wallet(t, alice, 10)

	for _, amount := range []any{0, -5, "ten", 2000000} {
		w := e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %v", amount)
	}
	assert.Equal(t, 10.0, e.balance(t, alice))
}

func TestTransfer(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceToken := e.user(t, "alice", domain.RoleSeller)
	bob, _ := e.user(t, "bob", domain.RoleProvider)
	e.wallet(t, alice, 100)
	e.wallet(t, bob, 5)

	w := e.do(http.MethodPost, "/wallet/transfer", aliceToken, gin.H{"to_username": "bob", "amount": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 70.0, e.balance(t, alice))
	assert.Equal(t, 35.0, e.balance(t, bob))

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"insufficient funds", gin.H{"to_username": "bob", "amount": 70.01}, http.StatusBadRequest},
		{"self", gin.H{"to_username": "alice", "amount": 1}, http.StatusBadRequest},
		{"unknown recipient", gin.H{"to_username": "carol", "amount": 1}, http.StatusNotFound},
		{"zero amount", gin.H{"to_username": "bob", "amount": 0}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/wallet/transfer", aliceToken, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	// Failed transfers leave both balances untouched.
	assert.Equal(t, 70.0, e.balance(t, alice))
	assert.Equal(t, 35.0, e.balance(t, bob))

	var txs []domain.Transaction
	require.NoError(t, e.db.Find(&txs).Error)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxTransfer, txs[0].Type)
}

func TestTransactionHistoryPagination(t *testing.T) {
	e := newTestEnv(t)
	alice, token := e.user(t, "alice", domain.RoleSeller)
	e.wallet(t, alice, 0)
	for _, amount := range []int{10, 20, 30} {
		require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": amount}).Code)
	}

	page := decode[transactionPage](t, e.do(http.MethodGet, "/wallet/transactions?page_size=2", token, nil))
	assert.Len(t, page.Transactions, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.Cached)

	page = decode[transactionPage](t, e.do(http.MethodGet, "/wallet/transactions?page=2&page_size=2", token, nil))
	require.Len(t, page.Transactions, 1)

	page = decode[transactionPage](t, e.do(http.MethodGet, "/wallet/transactions?page_size=2", token, nil))
	assert.True(t, page.Cached)

	// Any new transaction drops every cached page.
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/wallet/deposit", token, gin.H{"amount": 1}).Code)
	page = decode[transactionPage](t, e.do(http.MethodGet, "/wallet/transactions?page_size=2", token, nil))
	assert.False(t, page.Cached)
	assert.EqualValues(t, 4, page.Total)
}

func TestFundCampaign(t *testing.T) {
	e := newTestEnv(t)
	alice, token := e.user(t, "alice", domain.RoleSeller)
	bob, _ := e.user(t, "bob", domain.RoleSeller)
	e.wallet(t, alice, 100)
	mine := domain.Campaign{OwnerID: alice.ID, Name: "Spring", Channel: "instagram", Budget: 200, Status: domain.CampaignActive}
	theirs := domain.Campaign{OwnerID: bob.ID, Name: "Other", Channel: "tiktok", Status: domain.CampaignActive}
	require.NoError(t, e.db.Create(&mine).Error)
	require.NoError(t, e.db.Create(&theirs).Error)

	w := e.do(http.MethodPost, "/wallet/fund-campaign", token, gin.H{"campaign_id": mine.ID, "amount": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 60.0, e.balance(t, alice))

	var funded domain.Campaign
	require.NoError(t, e.db.First(&funded, mine.ID).Error)
	assert.Equal(t, 40.0, funded.Funded)

	var tx domain.Transaction
	require.NoError(t, e.db.Where("type = ?", domain.TxCampaignSpend).First(&tx).Error)
	require.NotNil(t, tx.CampaignID)
	assert.Equal(t, mine.ID, *tx.CampaignID)
	assert.Nil(t, tx.ToWalletID)

	w = e.do(http.MethodPost, "/wallet/fund-campaign", token, gin.H{"campaign_id": mine.ID, "amount": 61})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodPost, "/wallet/fund-campaign", token, gin.H{"campaign_id": theirs.ID, "amount": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 60.0, e.balance(t, alice))

	// The history shows the spend.
	page := decode[transactionPage](t, e.do(http.MethodGet, "/wallet/transactions", token, nil))
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, domain.TxCampaignSpend, page.Transactions[0].Type)

	// Funded campaigns stay.
	w = e.do(http.MethodDelete, "/campaigns/"+itoa(mine.ID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
