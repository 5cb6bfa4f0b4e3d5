package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zanledger/server/internal/api/testutils"
	"github.com/zanledger/server/internal/models"
)

// sendRequest has from ask to to link, returning the created request
func sendRequest(t *testing.T, testCtx *testutils.TestContext, from, to testutils.TestCustomer, label string) models.CustomerRequest {
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/requests",
		models.CreateConnectionRequest{UniqueCode: to.UniqueCode, CustomName: label},
		testutils.AuthHeaders(from.Token),
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.RequestResponse
	testutils.DecodeJSON(t, w, &resp)
	return *resp.Request
}

func listConnections(t *testing.T, testCtx *testutils.TestContext, who testutils.TestCustomer) []models.ConnectionWithCustomer {
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/connections", nil, testutils.AuthHeaders(who.Token))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ConnectionsResponse
	testutils.DecodeJSON(t, w, &resp)
	return resp.Connections
}

func TestConnectionRequests(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	alice, bob := testCtx.Alice, testCtx.Bob

	t.Run("RejectsUnknownCodeAndSelf", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/requests",
			models.CreateConnectionRequest{UniqueCode: "ZAN-NOPE0000", CustomName: "Nobody"},
			testutils.AuthHeaders(alice.Token),
		)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/requests",
			models.CreateConnectionRequest{UniqueCode: alice.UniqueCode, CustomName: "Me"},
			testutils.AuthHeaders(alice.Token),
		)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	request := sendRequest(t, testCtx, alice, bob, "Bob from work")
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, "Alice Karimi", request.FromCustomerName)

	t.Run("DuplicatePendingRequestConflicts", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/requests",
			models.CreateConnectionRequest{UniqueCode: alice.UniqueCode, CustomName: "Alice"},
			testutils.AuthHeaders(bob.Token),
		)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ListsReceivedAndSent", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/requests", nil, testutils.AuthHeaders(bob.Token))
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.RequestsResponse
		testutils.DecodeJSON(t, w, &resp)
		assert.Len(t, resp.ReceivedRequests, 1)
		assert.Empty(t, resp.SentRequests)
	})

	t.Run("OnlyRecipientMayAccept", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			fmt.Sprintf("/api/requests/%s/accept", request.ID),
			nil,
			testutils.AuthHeaders(alice.Token),
		)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AcceptCreatesBothConnections", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			fmt.Sprintf("/api/requests/%s/accept", request.ID),
			nil,
			testutils.AuthHeaders(bob.Token),
		)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		aliceConns := listConnections(t, testCtx, alice)
		bobConns := listConnections(t, testCtx, bob)
		require.Len(t, aliceConns, 1)
		require.Len(t, bobConns, 1)

		assert.Equal(t, bob.ID, aliceConns[0].ConnectedCustomerID)
		assert.Equal(t, "Bob from work", aliceConns[0].CustomName)
		assert.Equal(t, "Bob Tehrani", aliceConns[0].ConnectedCustomer.Name)
		assert.Equal(t, alice.ID, bobConns[0].ConnectedCustomerID)

		var count int
		require.NoError(t, testCtx.DB.Get(&count, `SELECT COUNT(*) FROM customer_requests WHERE id = $1 AND status = 'pending'`, request.ID))
		assert.Zero(t, count)
	})

	t.Run("SecondAcceptIsInvalidState", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			fmt.Sprintf("/api/requests/%s/reject", request.ID),
			nil,
			testutils.AuthHeaders(bob.Token),
		)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errResp models.ErrorResponse
		testutils.DecodeJSON(t, w, &errResp)
		assert.Equal(t, "INVALID_STATE", errResp.Code)
	})

	t.Run("ExistingConnectionConflicts", func(t *testing.T) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/requests",
			models.CreateConnectionRequest{UniqueCode: alice.UniqueCode, CustomName: "Alice again"},
			testutils.AuthHeaders(bob.Token),
		)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("RenameAndDeleteOwnConnectionOnly", func(t *testing.T) {
		conn := listConnections(t, testCtx, alice)[0]

		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPatch,
			fmt.Sprintf("/api/connections/%s", conn.ID),
			models.UpdateConnectionRequest{CustomName: "Bobby"},
			testutils.AuthHeaders(bob.Token),
		)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodPatch,
			fmt.Sprintf("/api/connections/%s", conn.ID),
			models.UpdateConnectionRequest{CustomName: "Bobby"},
			testutils.AuthHeaders(alice.Token),
		)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Bobby", listConnections(t, testCtx, alice)[0].CustomName)

		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodDelete,
			fmt.Sprintf("/api/connections/%s", conn.ID),
			nil,
			testutils.AuthHeaders(alice.Token),
		)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, listConnections(t, testCtx, alice))
		assert.Len(t, listConnections(t, testCtx, bob), 1)
	})
}

func TestRelinkAfterRemovingOneSide(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	alice, bob := testCtx.Alice, testCtx.Bob

	accept := func(requestID string) {
		w := testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			fmt.Sprintf("/api/requests/%s/accept", requestID),
			nil,
			testutils.AuthHeaders(bob.Token),
		)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	accept(sendRequest(t, testCtx, alice, bob, "Bob from work").ID)

	conn := listConnections(t, testCtx, alice)[0]
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/connections/%s", conn.ID),
		nil,
		testutils.AuthHeaders(alice.Token),
	)
	require.Equal(t, http.StatusOK, w.Code)

	// Bob's row survives, so the second accept must leave it in place
	accept(sendRequest(t, testCtx, alice, bob, "Bob again").ID)

	aliceConns := listConnections(t, testCtx, alice)
	require.Len(t, aliceConns, 1)
	assert.Equal(t, "Bob again", aliceConns[0].CustomName)

	bobConns := listConnections(t, testCtx, bob)
	require.Len(t, bobConns, 1)
	assert.Equal(t, "Alice Karimi", bobConns[0].CustomName)
}

func TestOfflineCustomer(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/connections/offline",
		models.AddOfflineCustomerRequest{CustomerName: "Hassan Shop"},
		testutils.AuthHeaders(testCtx.Alice.Token),
	)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.OfflineCustomerResponse
	testutils.DecodeJSON(t, w, &resp)
	assert.True(t, resp.Customer.Offline)
	assert.Nil(t, resp.Customer.UniqueCode)
	assert.Nil(t, resp.Customer.Username)
	assert.Equal(t, "Hassan Shop", resp.Connection.CustomName)

	// One direction only
	conns := listConnections(t, testCtx, testCtx.Alice)
	require.Len(t, conns, 1)
	assert.True(t, conns[0].ConnectedCustomer.Offline)
	assert.Empty(t, listConnections(t, testCtx, testCtx.Bob))

	// Admins have no connection list
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/connections", nil, testutils.AuthHeaders(testCtx.AdminToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
