package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"xdao.co/synchronizer/attest"
	"xdao.co/synchronizer/instruction"
	"xdao.co/synchronizer/keys"
	"xdao.co/synchronizer/program"
	"xdao.co/synchronizer/state"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "attest":
		return cmdAttest(args[1:], out, errOut)
	case "inst":
		return cmdInst(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "record":
		return cmdRecord(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "synchro: synchronizer oracle and inspection CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  synchro key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  synchro key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  synchro key list")
	fmt.Fprintln(w, "  synchro attest --collateral <base58> --price <u64> [--time <unix>] [--hash sha256|sha512|sha3-256] (--seed-hex <64hex> | --signer <name> [--signer-role <role>] | --key-file <path>)")
	fmt.Fprintln(w, "  synchro inst decode <hex|file>")
	fmt.Fprintln(w, "  synchro record show <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys live under ~/.synchronizer/keys/<name> (0600 seed files)")
	fmt.Fprintln(w, "  - attest prints the payload and signature as hex; the oracle identity goes to stderr")
	fmt.Fprintln(w, "  - prices are fixed-point with 9 fractional digits")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "synchro key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  synchro key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  synchro key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  synchro key list")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.synchronizer/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible setups)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	identity, rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", identity)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. price, ops)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	identity, rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", identity)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Identity)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func cmdAttest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("attest", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var collateral string
	var price uint64
	var unixTime int64
	var hashAlg string
	var seedHex string
	var signerName string
	var signerRole string
	var keyFile string

	fs.StringVar(&collateral, "collateral", "", "Collateral mint the price refers to (base58)")
	fs.Uint64Var(&price, "price", 0, "Price in fixed-point units (9 fractional digits)")
	fs.Int64Var(&unixTime, "time", 0, "Attestation time as unix seconds (defaults to now UTC)")
	fs.StringVar(&hashAlg, "hash", attest.HashSHA256, "Digest algorithm: sha256, sha512 or sha3-256")
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed as 64 hex chars")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'synchro key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a seed file (hex) created by 'synchro key init/derive'")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if collateral == "" {
		fmt.Fprintln(errOut, "missing --collateral")
		return 2
	}
	if price == 0 {
		fmt.Fprintln(errOut, "missing --price")
		return 2
	}
	if seedHex == "" && signerName == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return 2
	}
	if seedHex != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}

	mint, err := program.ParsePublicKey(collateral)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --collateral: %v\n", err)
		return 2
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}
	priv, err := keys.SignerFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return 1
	}
	oracle, err := attest.Identity(attest.AlgEd25519, priv.Public().(ed25519.PublicKey))
	if err != nil {
		fmt.Fprintf(errOut, "identity: %v\n", err)
		return 1
	}

	if unixTime == 0 {
		unixTime = time.Now().UTC().Unix()
	}

	signed, err := attest.SignEd25519(attest.Attestation{
		Oracle:          oracle,
		CollateralToken: mint,
		Price:           price,
		UnixTime:        unixTime,
	}, hashAlg, priv)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}

	fmt.Fprintf(errOut, "Oracle: %s\n", oracle)
	fmt.Fprintf(out, "payload=%s\n", hex.EncodeToString(signed.Attestation.Encode()))
	fmt.Fprintf(out, "signature=%s\n", hex.EncodeToString(signed.Signature))
	fmt.Fprintf(out, "sig-alg=%s hash-alg=%s\n", signed.SigAlg, signed.HashAlg)
	return 0
}

func cmdInst(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: synchro inst <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: decode")
		return 2
	}
	switch args[0] {
	case "decode":
		return cmdInstDecode(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown inst subcommand: %s\n", args[0])
		return 2
	}
}

func cmdInstDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inst decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: synchro inst decode <hex|file>")
		return 2
	}

	arg := fs.Arg(0)
	raw, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(arg, "0x")))
	if err != nil {
		// Not hex; treat the argument as a file of hex or raw bytes.
		b, rerr := os.ReadFile(arg)
		if rerr != nil {
			fmt.Fprintf(errOut, "argument is neither hex nor a readable file: %v\n", rerr)
			return 2
		}
		raw, err = hex.DecodeString(strings.TrimSpace(string(b)))
		if err != nil {
			raw = b
		}
	}

	inst, err := instruction.Decode(raw)
	if err != nil {
		fmt.Fprintf(errOut, "decode: %v\n", err)
		return 1
	}
	fmt.Fprint(out, describeInstruction(inst))
	return 0
}

func describeInstruction(inst instruction.Instruction) string {
	var sb strings.Builder
	switch v := inst.(type) {
	case instruction.BuyFor:
		sb.WriteString("BuyFor\n")
		fmt.Fprintf(&sb, "  multiplier: %d\n", v.Multiplier)
		fmt.Fprintf(&sb, "  amount: %d\n", v.Amount)
		fmt.Fprintf(&sb, "  fee: %d\n", v.Fee)
		fmt.Fprintf(&sb, "  prices: %s\n", formatPrices(v.Prices))
	case instruction.SellFor:
		sb.WriteString("SellFor\n")
		fmt.Fprintf(&sb, "  multiplier: %d\n", v.Multiplier)
		fmt.Fprintf(&sb, "  amount: %d\n", v.Amount)
		fmt.Fprintf(&sb, "  fee: %d\n", v.Fee)
		fmt.Fprintf(&sb, "  prices: %s\n", formatPrices(v.Prices))
	case instruction.Initialize:
		sb.WriteString("Initialize\n")
		fmt.Fprintf(&sb, "  collateral-token: %s\n", v.CollateralToken)
		fmt.Fprintf(&sb, "  remaining-dollar-cap: %d\n", v.RemainingDollarCap)
		fmt.Fprintf(&sb, "  withdrawable-fee-amount: %d\n", v.WithdrawableFeeAmount)
		fmt.Fprintf(&sb, "  minimum-required-signatures: %d\n", v.MinimumRequiredSignatures)
		for _, o := range v.Oracles {
			fmt.Fprintf(&sb, "  oracle: %s\n", o)
		}
	case instruction.SetMinimumRequiredSignatures:
		sb.WriteString("SetMinimumRequiredSignatures\n")
		fmt.Fprintf(&sb, "  minimum-required-signatures: %d\n", v.MinimumRequiredSignatures)
	case instruction.SetCollateralToken:
		sb.WriteString("SetCollateralToken\n")
		fmt.Fprintf(&sb, "  collateral-token: %s\n", v.CollateralToken)
	case instruction.SetRemainingDollarCap:
		sb.WriteString("SetRemainingDollarCap\n")
		fmt.Fprintf(&sb, "  remaining-dollar-cap: %d\n", v.RemainingDollarCap)
	case instruction.WithdrawFee:
		sb.WriteString("WithdrawFee\n")
		fmt.Fprintf(&sb, "  amount: %d\n", v.Amount)
	case instruction.WithdrawCollateral:
		sb.WriteString("WithdrawCollateral\n")
		fmt.Fprintf(&sb, "  amount: %d\n", v.Amount)
	case instruction.SetOracles:
		sb.WriteString("SetOracles\n")
		for _, o := range v.Oracles {
			fmt.Fprintf(&sb, "  oracle: %s\n", o)
		}
	default:
		fmt.Fprintf(&sb, "unknown instruction %T\n", inst)
	}
	return sb.String()
}

func formatPrices(prices []uint64) string {
	parts := make([]string, 0, len(prices))
	for _, p := range prices {
		parts = append(parts, strconv.FormatUint(p, 10))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func cmdRecord(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: synchro record <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: show")
		return 2
	}
	switch args[0] {
	case "show":
		return cmdRecordShow(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown record subcommand: %s\n", args[0])
		return 2
	}
}

func cmdRecordShow(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("record show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: synchro record show <file>")
		return 2
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read record: %v\n", err)
		return 1
	}
	rec, err := state.UnpackUnchecked(raw)
	if err != nil {
		fmt.Fprintf(errOut, "unpack: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "initialized: %v\n", rec.IsInitialized)
	fmt.Fprintf(out, "collateral-token: %s\n", rec.CollateralToken)
	fmt.Fprintf(out, "remaining-dollar-cap: %d\n", rec.RemainingDollarCap)
	fmt.Fprintf(out, "withdrawable-fee-amount: %d\n", rec.WithdrawableFeeAmount)
	fmt.Fprintf(out, "minimum-required-signatures: %d\n", rec.MinimumRequiredSignatures)
	for _, o := range rec.Oracles {
		if o.IsZero() {
			continue
		}
		fmt.Fprintf(out, "oracle: %s\n", o)
	}
	return 0
}
