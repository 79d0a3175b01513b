package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKakaoTestServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/user/me", r.URL.Path)
		assert.Equal(t, "Bearer kakao-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestKakao(baseURL string) *KakaoProvider {
	return NewKakaoProvider(KakaoConfig{BaseURL: baseURL}, &http.Client{Timeout: 2 * time.Second}, nil)
}

func TestKakaoProvider_FetchIdentity(t *testing.T) {
	tests := []struct {
		name string
		body string
		want struct{ id, nickname, email, avatar string }
	}{
		{
			name: "string id with email",
			body: `{"id":"12345","properties":{"nickname":"Tester"},"kakao_account":{"email":"a@b.com"}}`,
			want: struct{ id, nickname, email, avatar string }{"12345", "Tester", "a@b.com", ""},
		},
		{
			name: "numeric id without email",
			body: `{"id":99999,"properties":{"nickname":"NoEmail","profile_image":"http://img/p.jpg"}}`,
			want: struct{ id, nickname, email, avatar string }{"99999", "NoEmail", "", "http://img/p.jpg"},
		},
		{
			name: "large numeric id keeps precision",
			body: `{"id":3141592653589793}`,
			want: struct{ id, nickname, email, avatar string }{"3141592653589793", "", "", ""},
		},
		{
			name: "falls back to kakao_account profile",
			body: `{"id":7,"properties":null,"kakao_account":{"email":"  ","profile":{"nickname":"Acct","profile_image_url":"http://img/a.jpg"}}}`,
			want: struct{ id, nickname, email, avatar string }{"7", "Acct", "", "http://img/a.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newKakaoTestServer(t, http.StatusOK, tt.body)

			identity, err := newTestKakao(srv.URL).FetchIdentity(context.Background(), "kakao-token")
			require.NoError(t, err)
			assert.Equal(t, "kakao", identity.Provider)
			assert.Equal(t, tt.want.id, identity.ExternalID)
			assert.Equal(t, tt.want.nickname, identity.DisplayName)
			assert.Equal(t, tt.want.email, identity.Email)
			assert.Equal(t, tt.want.avatar, identity.AvatarURL)
		})
	}
}

func TestKakaoProvider_FetchIdentity_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"msg":"this access token does not exist","code":-401}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed body", status: http.StatusOK, body: `{"id":`},
		{name: "missing id", status: http.StatusOK, body: `{"properties":{"nickname":"Ghost"}}`},
		{name: "null id", status: http.StatusOK, body: `{"id":null}`},
		{name: "empty string id", status: http.StatusOK, body: `{"id":" "}`},
		{name: "fractional id", status: http.StatusOK, body: `{"id":1.5}`},
		{name: "object id", status: http.StatusOK, body: `{"id":{"v":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newKakaoTestServer(t, tt.status, tt.body)

			identity, err := newTestKakao(srv.URL).FetchIdentity(context.Background(), "kakao-token")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProviderRejected)
			assert.Nil(t, identity)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retries")
		})
	}
}

func TestKakaoProvider_EmptyTokenSkipsNetwork(t *testing.T) {
	srv, calls := newKakaoTestServer(t, http.StatusOK, `{"id":1}`)

	_, err := newTestKakao(srv.URL).FetchIdentity(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestKakaoProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestKakao(url).FetchIdentity(context.Background(), "kakao-token")
	assert.ErrorIs(t, err, ErrProviderRejected)
}

func TestKakaoProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewKakaoProvider(KakaoConfig{BaseURL: srv.URL}, &http.Client{Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	_, err := p.FetchIdentity(context.Background(), "kakao-token")
	assert.ErrorIs(t, err, ErrProviderRejected)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewKakaoProvider_Defaults(t *testing.T) {
	p := NewKakaoProvider(KakaoConfig{BaseURL: "https://kapi.kakao.com/"}, nil, nil)
	assert.Equal(t, "kakao", p.Name())
	assert.Equal(t, "kakao.com", p.EmailDomain())
	assert.Equal(t, "https://kapi.kakao.com", p.baseURL)
	assert.Equal(t, 5*time.Second, p.httpClient.Timeout)
}
