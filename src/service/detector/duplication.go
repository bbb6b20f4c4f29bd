package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/service/lexer"
	"code-atlas/src/service/metrics"
	"code-atlas/src/util"
)

// rollingBase is the multiplier of the polynomial window hash; arithmetic wraps mod 2^64
const rollingBase uint64 = 1099511628211

// DuplicationDetector detects repeated runs of code lines inside one file
type DuplicationDetector struct {
	BaseDetector
	cfg config.DuplicationDetectorConfig
}

// NewDuplicationDetector creates a new duplication detector
func NewDuplicationDetector(base BaseDetector, cfg config.DuplicationDetectorConfig) *DuplicationDetector {
	return &DuplicationDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *DuplicationDetector) Name() string {
	return "duplication"
}

// IsEnabled returns whether the detector is enabled
func (d *DuplicationDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

// codeLine is one normalized line of code
type codeLine struct {
	line   int
	text   string
	tokens int
	hash   uint64
}

// duplicatePair is a maximal run of matching lines; earlier and later index
// into the normalized line list
type duplicatePair struct {
	earlier int
	later   int
	length  int
}

// Detect runs duplication detection
func (d *DuplicationDetector) Detect(ctx context.Context, file *metrics.FileAnalysis) ([]model.Finding, error) {
	lines := normalizeLines(file.Tokens)
	pairs, err := d.findPairs(ctx, lines)
	if err != nil {
		return nil, err
	}

	findings := make([]model.Finding, 0, len(pairs))
	for _, p := range pairs {
		first := lines[p.earlier].line
		firstEnd := lines[p.earlier+p.length-1].line
		start := lines[p.later].line
		end := lines[p.later+p.length-1].line

		findings = append(findings, d.NewFinding(model.SmellDuplicateCode, model.SeverityHigh,
			file.Metrics.Path, start, end,
			fmt.Sprintf("Lines %d-%d duplicate lines %d-%d (%d code lines)", start, end, first, firstEnd, p.length),
			"Extract the shared logic into a single function and call it from both places"))
	}

	if len(findings) > 0 {
		util.Debug("Duplication detector: %d duplicate blocks in %s", len(findings), file.Metrics.Path)
	}
	return d.FilterBySeverity(findings), nil
}

// normalizeLines joins the code tokens of each line. Comments and
// whitespace drop out; identifiers and literals are kept verbatim.
func normalizeLines(toks []lexer.Token) []codeLine {
	var (
		lines []codeLine
		parts []string
		cur   = -1
	)

	flush := func() {
		if len(parts) == 0 {
			return
		}
		text := strings.Join(parts, " ")
		lines = append(lines, codeLine{line: cur, text: text, tokens: len(parts), hash: xxhash.Sum64String(text)})
		parts = parts[:0]
	}

	for _, tok := range toks {
		if !tok.IsCode() || tok.Text == "" {
			continue
		}
		if tok.Line != cur {
			flush()
			cur = tok.Line
		}
		parts = append(parts, tok.Text)
	}
	flush()
	return lines
}

// findPairs slides a window of MinLines lines over the file. The first
// earlier window whose lines are identical (verified, not just hashed) and
// that does not overlap wins; the match is then grown line by line while
// the two runs stay disjoint.
func (d *DuplicationDetector) findPairs(ctx context.Context, lines []codeLine) ([]duplicatePair, error) {
	w := d.cfg.MinLines
	if w <= 0 || len(lines) < 2*w {
		return nil, nil
	}

	hashes := windowHashes(lines, w)
	seen := make(map[uint64][]int, len(hashes))

	var pairs []duplicatePair
	nextFree := 0

	for i, h := range hashes {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if i >= nextFree {
			for _, j := range seen[h] {
				if j+w > i || !sameLines(lines, j, i, w) {
					continue
				}
				length := w
				for i+length < len(lines) && j+length < i && lines[j+length].text == lines[i+length].text {
					length++
				}
				if tokenCount(lines, i, length) >= d.cfg.MinTokens {
					pairs = append(pairs, duplicatePair{earlier: j, later: i, length: length})
					nextFree = i + length
				}
				break
			}
		}
		seen[h] = append(seen[h], i)
	}
	return pairs, nil
}

// windowHashes returns the polynomial hash of every window of w lines
func windowHashes(lines []codeLine, w int) []uint64 {
	n := len(lines) - w + 1
	hashes := make([]uint64, n)

	var pow uint64 = 1
	for k := 1; k < w; k++ {
		pow *= rollingBase
	}

	var h uint64
	for k := 0; k < w; k++ {
		h = h*rollingBase + lines[k].hash
	}
	hashes[0] = h
	for i := 1; i < n; i++ {
		h = (h-lines[i-1].hash*pow)*rollingBase + lines[i+w-1].hash
		hashes[i] = h
	}
	return hashes
}

func sameLines(lines []codeLine, a, b, n int) bool {
	for k := 0; k < n; k++ {
		if lines[a+k].text != lines[b+k].text {
			return false
		}
	}
	return true
}

func tokenCount(lines []codeLine, start, n int) int {
	total := 0
	for k := start; k < start+n; k++ {
		total += lines[k].tokens
	}
	return total
}
