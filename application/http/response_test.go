package http

import (
	"encoding/json"
	"testing"

	"rawhttp/application/http/status"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestResponseJSON(t *testing.T) {
	resp := &Response{Status: status.OK, Body: `{"id":7,"name":"ana"}`}

	var u user
	require.NoError(t, resp.JSON(&u))
	assert.Equal(t, user{ID: 7, Name: "ana"}, u)
}

func TestDecodeJSON(t *testing.T) {
	resp := &Response{Status: status.OK, Body: `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`}

	users, err := DecodeJSON[[]user](resp)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b", users[1].Name)
}

func TestDecodeJSONError(t *testing.T) {
	testcases := []struct {
		desc string
		body string
	}{
		{desc: "not json", body: "<html></html>"},
		{desc: "wrong shape", body: `{"id":"seven"}`},
		{desc: "empty", body: ""},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := DecodeJSON[user](&Response{Body: tc.body})
			assert.Zero(t, u)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Contains(t, err.Error(), "decoding JSON body")
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	err := (&Response{Body: `{"id":"x"}`}).JSON(&user{})

	var typeErr *json.UnmarshalTypeError
	assert.True(t, errors.As(err, &typeErr))
}

func TestExpectSuccess(t *testing.T) {
	assert.NoError(t, (&Response{Status: status.NoContent}).ExpectSuccess())

	err := (&Response{Status: status.FromCode(418)}).ExpectSuccess()
	var se status.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, uint(418), se.Status.Code)
}
