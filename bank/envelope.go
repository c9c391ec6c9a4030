package bank

import (
	"xdao.co/synchronizer/program"
)

// AccountMeta names one account an envelope touches and whether it signed.
type AccountMeta struct {
	Key      program.PublicKey
	IsSigner bool
}

// Envelope is one transaction: an ordered account list plus serialized
// instruction bytes.
//
// Wire layout: a one-byte account count, then per account a 32-byte key and
// a one-byte signer flag (strictly 0 or 1), then the instruction bytes.
type Envelope struct {
	Accounts    []AccountMeta
	Instruction []byte
}

// Encode serializes the envelope.
func (e Envelope) Encode() []byte {
	out := make([]byte, 0, 1+len(e.Accounts)*(program.PublicKeyLen+1)+len(e.Instruction))
	out = append(out, byte(len(e.Accounts)))
	for _, meta := range e.Accounts {
		out = append(out, meta.Key[:]...)
		if meta.IsSigner {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return append(out, e.Instruction...)
}

// DecodeEnvelope parses an envelope with the same strictness as the
// instruction codec: any malformed input fails with InvalidInstruction.
func DecodeEnvelope(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Envelope{}, program.NewError(program.CodeInvalidInstruction)
	}
	n := int(data[0])
	data = data[1:]
	need := n * (program.PublicKeyLen + 1)
	if len(data) < need {
		return Envelope{}, program.NewError(program.CodeInvalidInstruction)
	}

	env := Envelope{Accounts: make([]AccountMeta, 0, n)}
	for i := 0; i < n; i++ {
		var meta AccountMeta
		copy(meta.Key[:], data[:program.PublicKeyLen])
		switch data[program.PublicKeyLen] {
		case 0:
		case 1:
			meta.IsSigner = true
		default:
			return Envelope{}, program.NewError(program.CodeInvalidInstruction)
		}
		env.Accounts = append(env.Accounts, meta)
		data = data[program.PublicKeyLen+1:]
	}
	env.Instruction = append([]byte(nil), data...)
	return env, nil
}
