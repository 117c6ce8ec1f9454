// Package reconcile converts a running config section and a desired state
// into the ordered commands that converge the device.
package reconcile

import (
	"strings"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
)

// ConfigBlock is the ordered lines of one configuration section.
type ConfigBlock []string

// IdentityKey matches an old line to a desired entity.
type IdentityKey string

// String returns the key.
func (k IdentityKey) String() string {
	return string(k)
}

// BlockFromText splits raw configuration into a ConfigBlock.
// Trailing whitespace is removed; blank lines are dropped.
func BlockFromText(text string) ConfigBlock {
	var block ConfigBlock
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		block = append(block, line)
	}
	return block
}

// BlockFromParser reads the section lines starting with prefix from a parser
// that exposes raw blocks. It returns nil when the parser has none.
func BlockFromParser(p configparser.Parser, prefix string) ConfigBlock {
	reader, ok := p.(configparser.BlockReader)
	if !ok {
		return nil
	}
	return ConfigBlock(reader.Block(prefix))
}

// Clone returns a copy of the block.
func (b ConfigBlock) Clone() ConfigBlock {
	if b == nil {
		return nil
	}
	return append(ConfigBlock(nil), b...)
}

// isIgnorable reports lines that carry no configuration.
func isIgnorable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || trimmed == "!"
}
