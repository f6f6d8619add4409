package security

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// jwksDocument 身份提供方发布的公钥集
type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet 缓存 JWKS 公钥，按 kid 查找，未命中时限频刷新
type KeySet struct {
	url    string
	client *resty.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

const refreshInterval = 5 * time.Minute

func NewKeySet(jwksURL string) *KeySet {
	return &KeySet{
		url:    jwksURL,
		client: resty.New().SetTimeout(10 * time.Second),
		keys:   map[string]*rsa.PublicKey{},
	}
}

// Get 按 kid 获取公钥，缓存未命中且距上次拉取超过限频窗口时重新拉取
func (s *KeySet) Get(kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fetchedAt := s.fetchedAt
	s.mu.RUnlock()
	if ok {
		return key, nil
	}

	if time.Since(fetchedAt) < refreshInterval {
		return nil, fmt.Errorf("unknown signing key: %s", kid)
	}

	if err := s.refresh(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok = s.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key: %s", kid)
}

func (s *KeySet) refresh() error {
	resp, err := s.client.R().Get(s.url)
	if err != nil {
		return fmt.Errorf("failed to fetch jwks: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to fetch jwks: status %d", resp.StatusCode())
	}

	var doc jwksDocument
	if err = json.Unmarshal(resp.Body(), &doc); err != nil {
		return fmt.Errorf("failed to parse jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	s.mu.Lock()
	s.keys = keys
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func parseRSAKey(k jwkKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
