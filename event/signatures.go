package event

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Sign computes the event Id from the canonical serialization and signs it
// with the provided secret key, filling in the Pubkey, Id and Sig fields.
func (ev *E) Sign(sec *btcec.PrivateKey) (err error) {
	ev.Pubkey = hex.EncodeToString(schnorr.SerializePubKey(sec.PubKey()))
	id := ev.GetIdBytes()
	ev.Id = hex.EncodeToString(id)
	var sig *schnorr.Signature
	if sig, err = schnorr.Sign(sec, id); err != nil {
		return fmt.Errorf("failed to sign event: %w", err)
	}
	ev.Sig = hex.EncodeToString(sig.Serialize())
	return
}

// Verify checks the Sig field against the Id under the Pubkey. The Id is
// assumed to have been checked against the canonical hash already.
func (ev *E) Verify() (valid bool, err error) {
	var pkb, idb, sigb []byte
	if pkb, err = hex.DecodeString(ev.Pubkey); err != nil {
		return false, fmt.Errorf("invalid pubkey hex: %w", err)
	}
	if idb, err = hex.DecodeString(ev.Id); err != nil {
		return false, fmt.Errorf("invalid id hex: %w", err)
	}
	if sigb, err = hex.DecodeString(ev.Sig); err != nil {
		return false, fmt.Errorf("invalid sig hex: %w", err)
	}
	var pk *btcec.PublicKey
	if pk, err = schnorr.ParsePubKey(pkb); err != nil {
		return false, fmt.Errorf("failed to parse pubkey: %w", err)
	}
	var sig *schnorr.Signature
	if sig, err = schnorr.ParseSignature(sigb); err != nil {
		return false, fmt.Errorf("failed to parse signature: %w", err)
	}
	valid = sig.Verify(idb, pk)
	return
}
