package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	apperr "tixload/cli/internal/errors"
)

// Decoders below are liberal in what they accept. Each returns ("", nil) when
// the value is absent and a Decode error only when the body looked like JSON
// but could not be parsed.

// DecodeIdentifier extracts an identifier from a body that is either a JSON
// object or a bare text id. Precedence: object field "uuid", object field "id",
// JSON string literal or number, then the trimmed raw text. Other JSON values
// (arrays, booleans, null) are absent.
func DecodeIdentifier(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		if looksLikeJSON(text) {
			return "", apperr.Wrap(apperr.Decode, "identifier body", err)
		}
		return text, nil
	}

	switch t := v.(type) {
	case map[string]any:
		for _, key := range []string{"uuid", "id"} {
			if s := scalarString(t[key]); s != "" {
				return s, nil
			}
		}
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case float64:
		// numeric ids are taken verbatim
		return text, nil
	default:
		// null, arrays and booleans carry no id
		return "", nil
	}
}

// DecodeHoldToken extracts {"holdToken": "..."} from a seat-map response.
func DecodeHoldToken(body []byte) (string, error) {
	root, err := decodeObject(body, "hold token body")
	if err != nil || root == nil {
		return "", err
	}
	return scalarString(root["holdToken"]), nil
}

// CartInfo is what later payment steps need from a GetCart response.
type CartInfo struct {
	PaymentProcessorID string
	EventID            string
}

// DecodeCart reads the payment processor and event of a cart. The populated
// shape {event:{_id, payment:{paymentProcessor}}} wins over the flat
// {paymentProcessorId, eventId} shape. A populated processor may itself be an
// object carrying _id.
func DecodeCart(body []byte) (CartInfo, error) {
	root, err := decodeObject(body, "cart body")
	if err != nil || root == nil {
		return CartInfo{}, err
	}

	var info CartInfo
	proc := lookup(root, "event", "payment", "paymentProcessor")
	if m, ok := proc.(map[string]any); ok {
		proc = m["_id"]
	}
	info.PaymentProcessorID = firstNonEmpty(scalarString(proc), scalarString(root["paymentProcessorId"]))

	event := root["event"]
	info.EventID = firstNonEmpty(
		scalarString(lookup(root, "event", "_id")),
		scalarString(root["eventId"]),
	)
	if info.EventID == "" {
		// unpopulated carts carry the event as a bare id
		if s, ok := event.(string); ok {
			info.EventID = strings.TrimSpace(s)
		}
	}
	return info, nil
}

// DecodeOrderNumber reads "orderNumber", which may be a string or a number.
func DecodeOrderNumber(body []byte) (string, error) {
	root, err := decodeObject(body, "cart info body")
	if err != nil || root == nil {
		return "", err
	}
	return scalarString(root["orderNumber"]), nil
}

// DecodePurchaseCode returns data[0].originalCode.
func DecodePurchaseCode(body []byte) (string, error) {
	root, err := decodeObject(body, "purchase codes body")
	if err != nil || root == nil {
		return "", err
	}
	data, ok := root["data"].([]any)
	if !ok || len(data) == 0 {
		return "", nil
	}
	first, ok := data[0].(map[string]any)
	if !ok {
		return "", nil
	}
	return scalarString(first["originalCode"]), nil
}

// decodeObject parses body as a JSON object. Empty bodies and non-object JSON
// yield (nil, nil).
func decodeObject(body []byte, label string) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperr.Wrap(apperr.Decode, label, err)
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// lookup walks nested objects; any non-object on the way yields nil.
func lookup(node any, path ...string) any {
	for _, key := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[key]
	}
	return node
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
