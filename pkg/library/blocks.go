package library

import (
	"regexp"
	"strings"
)

var blockRe = regexp.MustCompile("(?i)```(?:spice)?\n([\\s\\S]*?)\n```")

// Block is a fenced netlist found in free text. Index counts every fenced
// block in the text, including the ones that were not netlists.
type Block struct {
	Index   int
	Netlist string
}

// ExtractBlocks finds ``` or ```spice fenced blocks that mention .end in
// any case and returns them trimmed.
func ExtractBlocks(text string) []Block {
	var blocks []Block

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, m := range blockRe.FindAllStringSubmatch(text, -1) {
		if !strings.Contains(strings.ToLower(m[1]), ".end") {
			continue
		}
		blocks = append(blocks, Block{Index: i, Netlist: strings.TrimSpace(m[1])})
	}

	return blocks
}
