package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "tinylink_session"

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec() *Codec {
	return New(testCookieName, testSigningKey, time.Hour)
}

func TestEncodeDecode(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.Encode("some-user-id")
	require.NoError(t, err, "The `Encode()` should not return error")
	require.NotEmpty(t, token)

	assert.Equal(t, "some-user-id", codec.Decode(token), "The decoded user ID should round-trip")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	codec := newTestCodec()

	assert.Equal(t, "", codec.Decode(""), "An empty token should decode as anonymous")
	assert.Equal(t, "", codec.Decode("not-a-token"), "A malformed token should decode as anonymous")
}

func TestDecodeRejectsTampering(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.Encode("some-user-id")
	require.NoError(t, err)

	// flip a single byte everywhere along the token; the very last byte is
	// skipped since its lowest bits are base64 padding and not signed
	for i := range token[:len(token)-1] {
		mutated := []byte(token)
		mutated[i] ^= 0x01
		assert.Equal(
			t,
			"",
			codec.Decode(string(mutated)),
			"A token with a flipped byte should never decode to a valid user ID",
		)
	}
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	codec := newTestCodec()
	foreign := New(testCookieName, []byte("another-signing-key-entirely!!!!"), time.Hour)

	token, err := foreign.Encode("some-user-id")
	require.NoError(t, err)

	assert.Equal(t, "", codec.Decode(token), "A token signed with a different key should decode as anonymous")
}

func TestDecodeRejectsExpired(t *testing.T) {
	codec := New(testCookieName, testSigningKey, -time.Hour)

	token, err := codec.Encode("some-user-id")
	require.NoError(t, err)

	assert.Equal(t, "", codec.Decode(token), "An expired token should decode as anonymous")
}

func TestCookieRoundTrip(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.Encode("some-user-id")
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	codec.SetCookie(recorder, token)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}

	session := codec.FromRequest(request)
	assert.Equal(t, "some-user-id", session.UserID)
}

func TestFromRequestWithoutCookie(t *testing.T) {
	codec := newTestCodec()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	session := codec.FromRequest(request)

	assert.Equal(t, "", session.UserID, "A request without the cookie should yield an anonymous session")
}

func TestClearCookie(t *testing.T) {
	codec := newTestCodec()

	recorder := httptest.NewRecorder()
	codec.ClearCookie(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge, "The cleared cookie should be expired")
}
