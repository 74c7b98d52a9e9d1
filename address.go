// Package splitledger holds the shared primitives of the split ledger:
// the bech32 address type used for every beneficiary and admin identity.
//
// The ledger itself lives in the ledger package, the storage layer in
// store, and the managed denomination in denom.
package splitledger

import (
	"github.com/btcsuite/btcutil/bech32"

	"github.com/splitledger/splitledger/errors"
)

// AddressDataLength is the payload length of all addresses, in bytes.
const AddressDataLength = 20

// Address is a bech32 encoded account identity. The empty string is a
// valid sentinel meaning "no account" and must never be persisted as a
// beneficiary or admin.
type Address string

// ParseAddress decodes a bech32 address string and returns its human
// readable part and raw payload.
func ParseAddress(raw string) (hrp string, payload []byte, err error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrAddress, err.Error())
	}
	payload, err = bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrAddress, err.Error())
	}
	return hrp, payload, nil
}

// NewAddress encodes a raw payload into a bech32 address with the given
// human readable prefix.
func NewAddress(hrp string, payload []byte) (Address, error) {
	if len(payload) != AddressDataLength {
		return "", errors.Wrapf(errors.ErrAddress, "payload must be %d bytes", AddressDataLength)
	}
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrAddress, err.Error())
	}
	raw, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrap(errors.ErrAddress, err.Error())
	}
	return Address(raw), nil
}

// Validate returns an error unless the address is a well formed bech32
// string carrying a payload of the expected length. The empty sentinel is
// not a valid address.
func (a Address) Validate() error {
	if a == "" {
		return errors.Wrap(errors.ErrAddress, "empty")
	}
	_, payload, err := ParseAddress(string(a))
	if err != nil {
		return err
	}
	if len(payload) != AddressDataLength {
		return errors.Wrapf(errors.ErrAddress, "payload of %d bytes", len(payload))
	}
	return nil
}

func (a Address) String() string {
	return string(a)
}
