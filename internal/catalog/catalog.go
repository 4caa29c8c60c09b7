package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dev-ticker-server/internal/types"

	"github.com/tidwall/gjson"
)

// ErrInvalidCatalog is returned when the token file does not have the expected shape
var ErrInvalidCatalog = errors.New("invalid token catalog")

// defaultPlatform is the only platform tokens are deployed on in the dev environment
const defaultPlatform = "ethereum"

// canonicalIDs maps lower-cased symbols to their well-known coin ids
var canonicalIDs = map[string]string{
	"eth":  "ethereum",
	"wbtc": "wrapped-bitcoin",
	"bat":  "basic-attention-token",
}

// Catalog holds the token descriptors loaded at startup. It is read-only after construction.
type Catalog struct {
	tokens []types.TokenDescriptor
}

// Load reads and parses the token file at path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from a JSON array of {symbol, address} objects.
// Extra fields on each entry are ignored.
func Parse(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidCatalog)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidCatalog)
	}

	entries := root.Array()
	tokens := make([]types.TokenDescriptor, 0, len(entries))
	for i, entry := range entries {
		if !entry.IsObject() {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrInvalidCatalog, i)
		}

		symbol, err := stringField(entry, "symbol")
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidCatalog, i, err)
		}
		address, err := stringField(entry, "address")
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidCatalog, i, err)
		}

		tokens = append(tokens, NewDescriptor(symbol, address))
	}

	return &Catalog{tokens: tokens}, nil
}

// NewDescriptor derives a token descriptor from a raw symbol and contract address
func NewDescriptor(symbol, address string) types.TokenDescriptor {
	symbol = strings.ToLower(symbol)
	address = strings.ToLower(address)

	return types.TokenDescriptor{
		CanonicalID:       CanonicalID(symbol),
		Symbol:            symbol,
		DisplayName:       symbol,
		PlatformAddresses: map[string]string{defaultPlatform: address},
	}
}

// CanonicalID returns the coin id for a symbol, falling back to the lower-cased symbol
func CanonicalID(symbol string) string {
	symbol = strings.ToLower(symbol)
	if id, ok := canonicalIDs[symbol]; ok {
		return id
	}
	return symbol
}

// Tokens returns a copy of every descriptor in file order
func (c *Catalog) Tokens() []types.TokenDescriptor {
	out := make([]types.TokenDescriptor, len(c.tokens))
	for i, t := range c.tokens {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tokens in the catalog
func (c *Catalog) Len() int {
	return len(c.tokens)
}

func stringField(entry gjson.Result, name string) (string, error) {
	field := entry.Get(name)
	if !field.Exists() {
		return "", fmt.Errorf("missing %q", name)
	}
	if field.Type != gjson.String {
		return "", fmt.Errorf("%q is not a string", name)
	}
	return field.String(), nil
}
