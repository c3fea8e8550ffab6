package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_IsTerminal(t *testing.T) {
	terminal := []PaymentStatus{
		PaymentPaid,
		PaymentFailed,
		PaymentExpired,
		PaymentCancelled,
		PaymentRefunded,
	}
	for _, st := range terminal {
		assert.True(t, st.IsTerminal(), "%s must be terminal", st)
	}

	assert.False(t, PaymentPending.IsTerminal())
	assert.False(t, PaymentStatus("unknown").IsTerminal())
}

func TestView_IsValid(t *testing.T) {
	valid := []View{ViewHome, ViewEvents, ViewDashboard, ViewEventDetail, ViewContact, ViewArticles}
	for _, v := range valid {
		assert.True(t, v.IsValid())
	}

	assert.False(t, View("settings").IsValid())
	assert.False(t, View("").IsValid())
}

func TestDefaultViewState(t *testing.T) {
	st := DefaultViewState()

	assert.Equal(t, ViewHome, st.CurrentView)
	assert.Empty(t, st.SelectedEntityID)
	assert.Equal(t, 0, st.ScrollPosition)
}

func TestViewState_JSONRoundtrip(t *testing.T) {
	st := ViewState{
		CurrentView:      ViewEventDetail,
		SelectedEntityID: "event-42",
		ScrollPosition:   880,
	}

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var out ViewState
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, st, out)
}

func TestLoginResponse_AdminAndUserShapes(t *testing.T) {
	var userReply LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"t","user":{"id":"u1","name":"U"}}`), &userReply))
	assert.NotNil(t, userReply.User)
	assert.Nil(t, userReply.Admin)

	var adminReply LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"t","admin":{"id":"a1","name":"A"}}`), &adminReply))
	assert.Nil(t, adminReply.User)
	assert.NotNil(t, adminReply.Admin)
}
