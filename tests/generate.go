// Package tests provides helpers for generating signed events in tests.
package tests

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"lukechampine.com/frand"

	"seqrelay.dev/event"
)

// NewSigner generates a fresh keypair, returning the secret key and the hex
// form of its x-only public key.
func NewSigner() (sec *btcec.PrivateKey, pubkey string, err error) {
	if sec, err = btcec.NewPrivateKey(); err != nil {
		return
	}
	pubkey = hex.EncodeToString(schnorr.SerializePubKey(sec.PubKey()))
	return
}

// SignedEvent builds and signs an event with the given fields.
func SignedEvent(
	sec *btcec.PrivateKey, k int, createdAt int64, content string,
	tags [][]string,
) (ev *event.E, err error) {
	if tags == nil {
		tags = [][]string{}
	}
	ev = &event.E{
		Kind:      k,
		CreatedAt: createdAt,
		Content:   content,
		Tags:      tags,
	}
	err = ev.Sign(sec)
	return
}

// GenerateRandomTextNote creates a kind 1 event with random text content up
// to maxSize bytes once base64 expanded.
func GenerateRandomTextNote(sec *btcec.PrivateKey, createdAt int64, maxSize int) (
	ev *event.E, err error,
) {
	l := frand.Intn(maxSize * 6 / 8) // account for base64 expansion
	return SignedEvent(
		sec, 1, createdAt,
		base64.StdEncoding.EncodeToString(frand.Bytes(l)), nil,
	)
}
