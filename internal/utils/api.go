package utils

import (
	"fmt"
	"net/url"
	"strconv"
)

// ParseIntParam retrieves an integer value from the provided URL query
// parameters. A missing key returns 0 without recording an error; an invalid
// value returns 0 and appends a message to fieldErrors under the key.
func ParseIntParam(params url.Values, key string, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return n, fieldErrors
}
