package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
)

const (
	KakaoProviderName = "kakao"

	defaultKakaoBaseURL     = "https://kapi.kakao.com"
	defaultKakaoEmailDomain = "kakao.com"
	defaultKakaoTimeout     = 5 * time.Second

	kakaoUserInfoPath = "/v2/user/me"
	maxKakaoBodyBytes = 1 << 20
)

// KakaoConfig configures KakaoProvider. Zero values fall back to the public API.
type KakaoConfig struct {
	BaseURL     string
	EmailDomain string
}

// KakaoProvider resolves Kakao access tokens through the user-info endpoint.
type KakaoProvider struct {
	baseURL     string
	emailDomain string
	httpClient  *http.Client
	logger      *zap.SugaredLogger
}

// NewKakaoProvider creates a Kakao client. httpClient is shared for the process
// lifetime and must carry a timeout; nil gets a private client with a 5s timeout.
func NewKakaoProvider(cfg KakaoConfig, httpClient *http.Client, logger *zap.SugaredLogger) *KakaoProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultKakaoBaseURL
	}
	emailDomain := strings.TrimSpace(cfg.EmailDomain)
	if emailDomain == "" {
		emailDomain = defaultKakaoEmailDomain
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultKakaoTimeout}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &KakaoProvider{
		baseURL:     baseURL,
		emailDomain: emailDomain,
		httpClient:  httpClient,
		logger:      logger,
	}
}

func (p *KakaoProvider) Name() string { return KakaoProviderName }

func (p *KakaoProvider) EmailDomain() string { return p.emailDomain }

type kakaoUserResponse struct {
	ID         json.RawMessage `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// FetchIdentity calls GET /v2/user/me with the bearer token.
func (p *KakaoProvider) FetchIdentity(ctx context.Context, accessToken string) (*entity.ExternalIdentity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrProviderRejected)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+kakaoUserInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create kakao user info request: %v", ErrProviderRejected, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warnw("kakao user info request failed", "error", err)
		return nil, fmt.Errorf("%w: kakao user info request failed: %v", ErrProviderRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		p.logger.Warnw("kakao user info rejected token", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: kakao user info status=%d", ErrProviderRejected, resp.StatusCode)
	}

	var payload kakaoUserResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxKakaoBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse kakao user info response: %v", ErrProviderRejected, err)
	}

	externalID, err := parseKakaoID(payload.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	return &entity.ExternalIdentity{
		Provider:    KakaoProviderName,
		ExternalID:  externalID,
		DisplayName: firstNonBlank(payload.Properties.Nickname, payload.KakaoAccount.Profile.Nickname),
		Email:       strings.TrimSpace(payload.KakaoAccount.Email),
		AvatarURL:   firstNonBlank(payload.Properties.ProfileImage, payload.KakaoAccount.Profile.ProfileImageURL),
	}, nil
}

// parseKakaoID accepts the numeric id Kakao sends as well as a string form.
func parseKakaoID(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", fmt.Errorf("kakao response has no id")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", fmt.Errorf("kakao response has empty id")
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("kakao id is neither string nor number: %s", trimmed)
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return "", fmt.Errorf("kakao id is not an integer: %s", n.String())
	}
	return strconv.FormatInt(id, 10), nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
