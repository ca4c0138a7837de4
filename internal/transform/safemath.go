package transform

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/lhaig/smartra/internal/ast"
)

// DefaultTargetVersion is the pragma constraint used when none is configured.
const DefaultTargetVersion = "^0.8.0"

// SafeMath records that the program relies on checked arithmetic. The
// target compiler from 0.8 on checks overflow natively, so no statement is
// rewritten. For older targets the program is flagged as needing a
// library; injecting one is left to the caller.
type SafeMath struct {
	TargetVersion string
}

// NewSafeMath returns a SafeMath transformer pinned to version.
func NewSafeMath(version string) *SafeMath {
	if version == "" {
		version = DefaultTargetVersion
	}
	return &SafeMath{TargetVersion: version}
}

// Transform implements Transformer.
func (s *SafeMath) Transform(site Site) {
	prog := site.Program
	log.Info("Applying overflow protection", "contract", site.Contract.Name, "target", s.TargetVersion)

	prog.SetMeta(ast.MetaUsesSafeMath, "true")
	prog.SetMeta(ast.MetaTargetVersion, s.TargetVersion)

	if NeedsSafeMathLibrary(s.TargetVersion) {
		log.Warn("Target version lacks checked arithmetic, SafeMath library required", "target", s.TargetVersion)
		prog.SetMeta(ast.MetaSafeMathLibraryRequired, "true")
	}
}

// NeedsSafeMathLibrary reports whether a pragma constraint such as
// "^0.7.6" or ">=0.6.0 <0.8.0" selects a compiler older than 0.8. The
// lower bound of the constraint decides. Unparseable constraints report
// false.
func NeedsSafeMathLibrary(constraint string) bool {
	major, minor, ok := lowerBound(constraint)
	if !ok {
		return false
	}
	return major == 0 && minor < 8
}

func lowerBound(constraint string) (major, minor int, ok bool) {
	for _, part := range strings.Fields(constraint) {
		if strings.HasPrefix(part, "<") {
			continue
		}
		v := strings.TrimLeft(part, "^~>=v")
		nums := strings.SplitN(v, ".", 3)
		if len(nums) < 2 {
			return 0, 0, false
		}
		maj, err := strconv.Atoi(nums[0])
		if err != nil {
			return 0, 0, false
		}
		mnr, err := strconv.Atoi(nums[1])
		if err != nil {
			return 0, 0, false
		}
		return maj, mnr, true
	}
	return 0, 0, false
}
