package vault

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/envault/internal/errors"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*LockPolicy)(nil)
	_ pflag.Value = (*OldKeyPolicy)(nil)
)

// LockPolicy decides what happens when an artifact is already locked.
// It implements pflag.Value.
type LockPolicy string

const (
	LockFailFast LockPolicy = "fail-fast"
	LockBlock    LockPolicy = "block"
)

func (p *LockPolicy) String() string {
	if p == nil || *p == "" {
		return string(LockFailFast)
	}
	return string(*p)
}

func (p *LockPolicy) Set(s string) error {
	parsed, err := ParseLockPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *LockPolicy) Type() string { return "policy" }

// ParseLockPolicy accepts "fail-fast" or "block". Empty means fail-fast.
func ParseLockPolicy(s string) (LockPolicy, error) {
	switch LockPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LockFailFast:
		return LockFailFast, nil
	case LockBlock:
		return LockBlock, nil
	default:
		return "", fmt.Errorf("%w: lock policy %q (want %s or %s)", kerrors.ErrInvalidConfig, s, LockFailFast, LockBlock)
	}
}

// OldKeyPolicy decides what happens to a key after everything sealed under
// it has been rotated. It implements pflag.Value.
type OldKeyPolicy string

const (
	RetainOldKey OldKeyPolicy = "retain"
	DeleteOldKey OldKeyPolicy = "delete"
)

func (p *OldKeyPolicy) String() string {
	if p == nil || *p == "" {
		return string(RetainOldKey)
	}
	return string(*p)
}

func (p *OldKeyPolicy) Set(s string) error {
	parsed, err := ParseOldKeyPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *OldKeyPolicy) Type() string { return "policy" }

// ParseOldKeyPolicy accepts "retain" or "delete". Empty means retain.
func ParseOldKeyPolicy(s string) (OldKeyPolicy, error) {
	switch OldKeyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RetainOldKey:
		return RetainOldKey, nil
	case DeleteOldKey:
		return DeleteOldKey, nil
	default:
		return "", fmt.Errorf("%w: old key policy %q (want %s or %s)", kerrors.ErrInvalidConfig, s, RetainOldKey, DeleteOldKey)
	}
}
