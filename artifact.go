package nftptr

import (
	"bytes"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Artifact names, without extension.
const (
	TokenArtifact = "NftPtrToken"
	OwnerArtifact = "NftPtrOwner"
)

//go:embed contracts/out/*.json contracts/out/*.code
var embeddedArtifacts embed.FS

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// forgeArtifact is the JSON layout written by forge build.
type forgeArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode struct {
		Object string `json:"object"`
	} `json:"bytecode"`
}

// LoadArtifact reads name from fsys. Two layouts are accepted: a forge
// artifact in <name>.json, or a bare ABI array in <name>.json next to hex
// bytecode in <name>.code.
func LoadArtifact(fsys fs.FS, name string) (*Artifact, error) {
	raw, err := fs.ReadFile(fsys, name+".json")
	if err != nil {
		return nil, fmt.Errorf("nftptr: read artifact %s: %w", name, err)
	}
	raw = bytes.TrimSpace(raw)

	var abiJSON []byte
	var code string
	if len(raw) > 0 && raw[0] == '{' {
		var fa forgeArtifact
		if err := json.Unmarshal(raw, &fa); err != nil {
			return nil, fmt.Errorf("nftptr: parse artifact %s: %w", name, err)
		}
		abiJSON = fa.ABI
		code = fa.Bytecode.Object
	} else {
		abiJSON = raw
		codeRaw, err := fs.ReadFile(fsys, name+".code")
		if err != nil {
			return nil, fmt.Errorf("nftptr: read bytecode %s: %w", name, err)
		}
		code = string(codeRaw)
	}

	parsed, err := ParseABI(string(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("nftptr: parse ABI %s: %w", name, err)
	}
	bytecode, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(code), "0x"))
	if err != nil {
		return nil, fmt.Errorf("nftptr: decode bytecode %s: %w", name, err)
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("nftptr: artifact %s: %w", name, errors.New("empty bytecode"))
	}

	return &Artifact{Name: name, ABI: parsed, Bytecode: bytecode}, nil
}

// deployData returns the creation code followed by the packed constructor arguments.
func (a *Artifact) deployData(args ...any) ([]byte, error) {
	input, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, &ArgumentError{Err: err}
	}
	data := make([]byte, 0, len(a.Bytecode)+len(input))
	data = append(data, a.Bytecode...)
	return append(data, input...), nil
}

// Artifacts holds the two contracts a Session deploys.
type Artifacts struct {
	Token *Artifact
	Owner *Artifact
}

// LoadArtifacts reads the token and owner artifacts from fsys.
func LoadArtifacts(fsys fs.FS) (*Artifacts, error) {
	token, err := LoadArtifact(fsys, TokenArtifact)
	if err != nil {
		return nil, err
	}
	if !NewContract(common.Address{}, token.ABI).HasMethod(MintOrMove) {
		return nil, fmt.Errorf("nftptr: artifact %s: %w", TokenArtifact, &MethodNotFoundError{Method: MintOrMove})
	}
	owner, err := LoadArtifact(fsys, OwnerArtifact)
	if err != nil {
		return nil, err
	}
	return &Artifacts{Token: token, Owner: owner}, nil
}

// LoadArtifactsDir reads the artifacts from a directory on disk.
func LoadArtifactsDir(dir string) (*Artifacts, error) {
	return LoadArtifacts(os.DirFS(dir))
}

// DefaultArtifacts returns the artifacts compiled into the binary.
func DefaultArtifacts() (*Artifacts, error) {
	sub, err := fs.Sub(embeddedArtifacts, "contracts/out")
	if err != nil {
		return nil, err
	}
	return LoadArtifacts(sub)
}
