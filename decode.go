package formtree

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode reconstructs a caller-defined value from a finished tree. Fields
// bind by lowercased name or by `params:"name"` tag. Decoding is weakly
// typed on purpose: text leaves carry raw wire text, so "42" fills an int
// field and "on" fills a bool, mirroring how form and query values arrive.
// Upload leaves bind to *Upload fields as-is.
func Decode(t *Tree, dst any) error {
	return DecodeValue(t.Root(), dst)
}

// DecodeValue decodes a subtree into dst.
func DecodeValue(v *Value, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "params",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFunc(formBoolHook),
	})
	if err != nil {
		return Issues{{Path: "/", Code: CodeTypeConflict, Message: "building decoder", Cause: err, Offset: -1}}
	}
	if err := dec.Decode(v.Interface()); err != nil {
		return Issues{{Path: "/", Code: CodeTypeConflict, Message: "decoding into target type", Cause: err, Offset: -1}}
	}
	return nil
}

// formBoolHook widens bool parsing to the form vocabulary: on/off and
// yes/no in addition to what strconv accepts.
func formBoolHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(data.(string)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	default:
		return data, nil
	}
}
