package skema

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type dupFrame struct {
	object  bool
	keys    map[string]struct{}
	wantKey bool
	seg     string // child currently being read
	index   int
}

// DetectJSONDuplicateKeys scans a JSON document and reports every object key
// that occurs twice in the same object, with the JSON Pointer of the
// duplicate. Syntax errors are left to the decoder and end the scan.
func DetectJSONDuplicateKeys(data []byte) Issues {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		iss   Issues
		stack []*dupFrame
	)
	pointer := func(last string) string {
		var b strings.Builder
		for _, f := range stack[:len(stack)-1] {
			b.WriteString(keyPointer(f.seg))
		}
		b.WriteString(keyPointer(last))
		return b.String()
	}
	// enterValue records the position of a value inside its container.
	enterValue := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if !top.object {
			top.seg = strconv.Itoa(top.index)
			top.index++
		}
	}
	leaveValue := func() {
		if len(stack) == 0 {
			return
		}
		if top := stack[len(stack)-1]; top.object {
			top.wantKey = true
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				enterValue()
				stack = append(stack, &dupFrame{object: v == '{', keys: map[string]struct{}{}, wantKey: v == '{'})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				leaveValue()
			}
		case string:
			if len(stack) > 0 {
				if top := stack[len(stack)-1]; top.object && top.wantKey {
					if _, dup := top.keys[v]; dup {
						iss = AppendIssues(iss, Issue{
							Path:    pointer(v),
							Code:    CodeDuplicateKey,
							Message: "duplicate key " + strconv.Quote(v),
						})
					}
					top.keys[v] = struct{}{}
					top.seg = v
					top.wantKey = false
					continue
				}
			}
			enterValue()
			leaveValue()
		default:
			enterValue()
			leaveValue()
		}
	}
	return iss
}
