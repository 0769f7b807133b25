package crypto

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/envelope"
	"github.com/dropDatabas3/sealjohn/internal/security/keyring"
	"github.com/dropDatabas3/sealjohn/internal/security/password"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

var testMasterKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

var fastArgon = password.Params{Memory: 64, Time: 1, Parallelism: 1, KeyLen: 32}

type switchableSource struct {
	failing atomic.Bool
}

func (s *switchableSource) Fill(buf []byte) error {
	if s.failing.Load() {
		return random.ErrEntropy
	}
	return random.System().Fill(buf)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newService(t *testing.T, mut ...func(*Config)) *Service {
	t.Helper()
	cfg := Config{MasterKey: testMasterKey, Argon2: fastArgon}
	for _, m := range mut {
		m(&cfg)
	}
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func TestNew_InvalidMasterKey(t *testing.T) {
	_, err := New(context.Background(), Config{MasterKey: "too-short"})
	assert.ErrorIs(t, err, ErrCryptoInit)

	_, err = New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrCryptoInit)
}

func TestNew_InvalidArgonParams(t *testing.T) {
	_, err := New(context.Background(), Config{
		MasterKey: testMasterKey,
		Argon2:    password.Params{Memory: 64, Time: 0, Parallelism: 1, KeyLen: 32},
	})
	assert.ErrorIs(t, err, ErrCryptoInit)
}

func TestNew_StartsReadyWithOneKey(t *testing.T) {
	s := newService(t)
	assert.True(t, s.IsReady())
	keys := s.Keys(context.Background())
	require.Len(t, keys, 1)
	assert.True(t, keys[0].Current)
}

func TestEncryptDecrypt_HelloWorld(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	enc, err := s.Encrypt(ctx, EncryptRequest{Data: "hello world", Context: map[string]string{"user": "42"}})
	require.NoError(t, err)
	require.NotNil(t, enc.ContextHash)

	pt, err := s.Decrypt(ctx, DecryptRequest{
		EncryptedData: enc.EncryptedData,
		KeyID:         enc.KeyID,
		Nonce:         enc.Nonce,
		ContextHash:   enc.ContextHash,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", pt)

	_, err = s.Decrypt(ctx, DecryptRequest{EncryptedData: enc.EncryptedData, KeyID: enc.KeyID, Nonce: enc.Nonce})
	assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
}

func TestRotateKeys_RetentionThroughService(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	enc, err := s.Encrypt(ctx, EncryptRequest{Data: "first"})
	require.NoError(t, err)
	first := enc.KeyID

	var last string
	for i := 0; i < 3; i++ {
		last, err = s.RotateKeys(ctx)
		require.NoError(t, err)
	}

	keys := s.Keys(ctx)
	require.Len(t, keys, keyring.RetentionLimit)
	assert.Equal(t, last, keys[0].ID)

	_, err = s.Decrypt(ctx, DecryptRequest{EncryptedData: enc.EncryptedData, KeyID: first, Nonce: enc.Nonce})
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)

	enc2, err := s.Encrypt(ctx, EncryptRequest{Data: "second"})
	require.NoError(t, err)
	assert.Equal(t, last, enc2.KeyID)
}

func TestHash_Modes(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	res, err := s.Hash(ctx, HashRequest{Data: "data"})
	require.NoError(t, err)
	assert.Equal(t, "sha256", res.Algorithm)
	assert.Equal(t, "none", res.Salt)
	assert.True(t, s.VerifyHash(ctx, "data", res.Hash))

	salt := "c29tZXNhbHRzb21lc2FsdA"
	res, err = s.Hash(ctx, HashRequest{Data: "data", Salt: &salt})
	require.NoError(t, err)
	assert.Equal(t, "argon2id", res.Algorithm)
	assert.True(t, s.VerifyHash(ctx, "data", res.Hash))
	assert.False(t, s.VerifyHash(ctx, "dato", res.Hash))

	bad := "x"
	_, err = s.Hash(ctx, HashRequest{Data: "data", Salt: &bad})
	assert.ErrorIs(t, err, digest.ErrInvalidSalt)
}

func TestSignVerify_Freshness(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)}
	s := newService(t, func(c *Config) {
		c.Now = clk.now
		c.SigningKeyLabel = "svc"
	})
	ctx := context.Background()

	sig, err := s.Sign(ctx, SignRequest{Data: "payload"})
	require.NoError(t, err)
	assert.Equal(t, "svc", sig.KeyID)
	_, err = time.Parse(time.RFC3339, sig.Timestamp)
	require.NoError(t, err)

	clk.advance(59 * time.Minute)
	ok, err := s.VerifySignature(ctx, "payload", sig.Signature, sig.Timestamp)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.advance(2 * time.Minute)
	ok, err = s.VerifySignature(ctx, "payload", sig.Signature, sig.Timestamp)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.VerifySignature(ctx, "payload", sig.Signature, "not-a-time")
	assert.ErrorIs(t, err, digest.ErrInvalidTimestamp)
}

func TestSign_ExplicitLabelAndDefault(t *testing.T) {
	s := newService(t)
	sig, err := s.Sign(context.Background(), SignRequest{Data: "x", KeyID: "billing"})
	require.NoError(t, err)
	assert.Equal(t, "billing", sig.KeyID)

	sig, err = s.Sign(context.Background(), SignRequest{Data: "x"})
	require.NoError(t, err)
	assert.Equal(t, digest.DefaultKeyLabel, sig.KeyID)
}

func TestEntropyFailure_IsPermanent(t *testing.T) {
	src := &switchableSource{}
	s := newService(t, func(c *Config) { c.Random = src })
	ctx := context.Background()

	src.failing.Store(true)
	_, err := s.Encrypt(ctx, EncryptRequest{Data: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, random.ErrEntropy))
	assert.False(t, s.IsReady())

	// aunque la entropía vuelva, el servicio no se degrada a "medio funcionar"
	src.failing.Store(false)
	_, err = s.Encrypt(ctx, EncryptRequest{Data: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = s.RotateKeys(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = s.Sign(ctx, SignRequest{Data: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, s.VerifyHash(ctx, "x", digest.Hash("x")))
	assert.False(t, s.IsReady())
}

func TestNew_EntropyFailureAtStartup(t *testing.T) {
	src := &switchableSource{}
	src.failing.Store(true)
	_, err := New(context.Background(), Config{MasterKey: testMasterKey, Random: src})
	assert.ErrorIs(t, err, ErrCryptoInit)
}

func TestConcurrentOperationsAcrossRotation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				enc, err := s.Encrypt(ctx, EncryptRequest{Data: "payload"})
				if err != nil {
					t.Errorf("encrypt: %v", err)
					return
				}
				_, err = s.Decrypt(ctx, DecryptRequest{EncryptedData: enc.EncryptedData, KeyID: enc.KeyID, Nonce: enc.Nonce})
				if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
					t.Errorf("decrypt: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := s.RotateKeys(ctx)
		require.NoError(t, err)
	}
	wg.Wait()
}
