package workspace

import (
	"fmt"
	"regexp"
	"strings"
)

// ReplacePattern applies a regular expression to content. When all is false
// only the first match is rewritten. The replacement may reference capture
// groups as $1 or ${name}. Content without a match comes back unchanged.
func ReplacePattern(content, pattern, replacement string, all bool) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if all {
		return re.ReplaceAllString(content, replacement), nil
	}
	match := re.FindStringSubmatchIndex(content)
	if match == nil {
		return content, nil
	}
	expanded := re.ExpandString(nil, replacement, content, match)
	return content[:match[0]] + string(expanded) + content[match[1]:], nil
}

// ReplaceLiteral substitutes search with replace, either the first
// occurrence only or every occurrence.
func ReplaceLiteral(content, search, replace string, all bool) string {
	if all {
		return strings.ReplaceAll(content, search, replace)
	}
	return strings.Replace(content, search, replace, 1)
}

// EditFileRegex rewrites the file addressed by relative in place using
// ReplacePattern. A pattern without a match still rewrites the file with
// identical content and is not an error.
func EditFileRegex(root ProjectRoot, relative, pattern, replacement string, all bool) error {
	content, err := ReadFile(root, relative)
	if err != nil {
		return err
	}
	updated, err := ReplacePattern(content, pattern, replacement, all)
	if err != nil {
		return err
	}
	return WriteFile(root, relative, updated)
}

// SearchReplaceFile rewrites the file addressed by relative in place using
// ReplaceLiteral.
func SearchReplaceFile(root ProjectRoot, relative, search, replace string, all bool) error {
	content, err := ReadFile(root, relative)
	if err != nil {
		return err
	}
	return WriteFile(root, relative, ReplaceLiteral(content, search, replace, all))
}
