package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-ils/core"
)

// EncryptedBackend seals entry values before delegating to the wrapped
// backend. Keys, timestamps and lifetimes stay readable so backends can
// still expire entries natively.
type EncryptedBackend struct {
	next   core.CacheBackend
	cipher Cipher
}

func NewEncryptedBackend(next core.CacheBackend, cipher Cipher) (*EncryptedBackend, error) {
	if next == nil {
		return nil, fmt.Errorf("security: cache backend is required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("security: cipher is required")
	}
	return &EncryptedBackend{next: next, cipher: cipher}, nil
}

func (b *EncryptedBackend) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	entry, ok, err := b.next.Get(ctx, key)
	if err != nil || !ok {
		return core.CacheEntry{}, false, err
	}
	var sealed string
	if err := json.Unmarshal(entry.Value, &sealed); err != nil {
		return core.CacheEntry{}, false, fmt.Errorf("security: cache entry %q is not sealed: %w", key, err)
	}
	plaintext, err := b.cipher.Decrypt(ctx, []byte(sealed))
	if err != nil {
		return core.CacheEntry{}, false, err
	}
	entry.Value = json.RawMessage(plaintext)
	return entry, true, nil
}

func (b *EncryptedBackend) Set(ctx context.Context, entry core.CacheEntry) error {
	ciphertext, err := b.cipher.Encrypt(ctx, entry.Value)
	if err != nil {
		return err
	}
	sealed, err := json.Marshal(string(ciphertext))
	if err != nil {
		return fmt.Errorf("security: encode sealed value: %w", err)
	}
	entry.Value = sealed
	return b.next.Set(ctx, entry)
}

func (b *EncryptedBackend) Delete(ctx context.Context, key string) error {
	return b.next.Delete(ctx, key)
}

var (
	_ core.CacheBackend = (*EncryptedBackend)(nil)
	_ Cipher            = (*AppKeyCipher)(nil)
)
