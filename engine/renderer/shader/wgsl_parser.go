package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// stageAttribute maps each shader stage to the WGSL attribute that marks its entry point.
var stageAttribute = map[ShaderType]*regexp.Regexp{
	ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
	ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
	ShaderTypeCompute:  regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`),
}

var (
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)
	blockCommentRegex  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRegex   = regexp.MustCompile(`//[^\n]*`)
)

// parseWorkgroupSize reads the first @workgroup_size attribute in source. Missing
// dimensions are 1, and a kernel without the attribute reports {1, 1, 1}.
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(withoutComments(source))
	if m == nil {
		return size
	}
	for i, dim := range m[1:] {
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseEntryPoint returns the name of the function carrying the stage attribute for
// stage, or "" when source has none.
func parseEntryPoint(source string, stage ShaderType) string {
	re, ok := stageAttribute[stage]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(withoutComments(source)); m != nil {
		return m[1]
	}
	return ""
}

func withoutComments(source string) string {
	source = blockCommentRegex.ReplaceAllString(source, "")
	return strings.TrimSpace(lineCommentRegex.ReplaceAllString(source, ""))
}
