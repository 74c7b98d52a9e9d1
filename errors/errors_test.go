package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind   *Error
		err    error
		wantIs bool
	}{
		"instance of the same root": {
			kind:   ErrOverflow,
			err:    ErrOverflow,
			wantIs: true,
		},
		"wrapped once": {
			kind:   ErrUnauthorized,
			err:    Wrap(ErrUnauthorized, "sender is not the admin"),
			wantIs: true,
		},
		"wrapped twice": {
			kind:   ErrUnderflow,
			err:    Wrap(Wrap(ErrUnderflow, "balance"), "reduce"),
			wantIs: true,
		},
		"different root": {
			kind:   ErrOverflow,
			err:    Wrap(ErrUnderflow, "balance"),
			wantIs: false,
		},
		"stdlib error": {
			kind:   ErrNotFound,
			err:    fmt.Errorf("not found"),
			wantIs: false,
		},
		"nil error": {
			kind:   ErrNotFound,
			err:    nil,
			wantIs: false,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.wantIs, tc.kind.Is(tc.err))
		})
	}
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "whatever"))
	assert.Nil(t, Wrapf(nil, "whatever %d", 42))
}

func TestWrapKeepsMessageChain(t *testing.T) {
	err := Wrap(Wrap(ErrWeights, "sum is 99/100"), "set weights")
	assert.Equal(t, "set weights: sum is 99/100: invalid weights", err.Error())
}

func TestMigrationErrorsAreDistinct(t *testing.T) {
	claims := Wrap(ErrClaimsExecuted, "migration")
	balance := Wrap(ErrBalanceOutstanding, "migration")

	assert.True(t, ErrClaimsExecuted.Is(claims))
	assert.False(t, ErrClaimsExecuted.Is(balance))
	assert.True(t, ErrBalanceOutstanding.Is(balance))
	assert.False(t, ErrBalanceOutstanding.Is(claims))
}

func TestRegisterPanicsOnDuplicateCode(t *testing.T) {
	assert.Panics(t, func() {
		Register(ErrNotFound.Code(), "another not found")
	})
}

func TestRecover(t *testing.T) {
	fail := func() (err error) {
		defer Recover(&err)
		panic("mayday")
	}
	err := fail()
	assert.True(t, ErrPanic.Is(err))
}
