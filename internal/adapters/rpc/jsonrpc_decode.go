package rpc

import (
	"encoding/json"
	"math"
	"strings"
)

func decodeSingleStringParam(raw json.RawMessage) (string, error) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 && arr[0] != "" {
		return arr[0], nil
	}
	return "", errInvalidParams
}

func decodeLoginParams(raw json.RawMessage) (string, string, error) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 2 {
		return arr[0], arr[1], nil
	}

	var payload struct {
		Address string `json:"address"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", errInvalidParams
	}
	return payload.Address, payload.Role, nil
}

// decodeListWorkParams accepts [creatorID, percentage] or an object form with
// an optional work_id for per-work uniqueness deployments. Percentage must be
// a strict integer: "10.5" style royalty splits are rejected at the edge.
func decodeListWorkParams(raw json.RawMessage) (string, string, int, error) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 2 {
		creatorID, ok := arr[0].(string)
		if !ok || strings.TrimSpace(creatorID) == "" {
			return "", "", 0, errInvalidParams
		}
		percentage, err := decodeStrictNonNegativeInt(arr[1])
		if err != nil {
			return "", "", 0, errInvalidParams
		}
		return creatorID, "", percentage, nil
	}

	var payload struct {
		CreatorID  string `json:"creator_id"`
		WorkID     string `json:"work_id"`
		Percentage any    `json:"percentage"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", "", 0, errInvalidParams
	}
	if strings.TrimSpace(payload.CreatorID) == "" {
		return "", "", 0, errInvalidParams
	}
	percentage, err := decodeStrictNonNegativeInt(payload.Percentage)
	if err != nil {
		return "", "", 0, errInvalidParams
	}
	return payload.CreatorID, payload.WorkID, percentage, nil
}

func decodeListingsQueryParams(raw json.RawMessage) (string, int, int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", 0, 0, nil
	}
	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil {
		return "", 0, 0, errInvalidParams
	}
	if len(arr) == 0 {
		return "", 0, 0, nil
	}
	creatorID, ok := arr[0].(string)
	if !ok {
		return "", 0, 0, errInvalidParams
	}
	if len(arr) == 1 {
		return creatorID, 0, 0, nil
	}
	if len(arr) != 3 {
		return "", 0, 0, errInvalidParams
	}
	limit, err := decodeStrictNonNegativeInt(arr[1])
	if err != nil {
		return "", 0, 0, errInvalidParams
	}
	offset, err := decodeStrictNonNegativeInt(arr[2])
	if err != nil {
		return "", 0, 0, errInvalidParams
	}
	if limit > maxListingPageLimit || offset > maxListingPageOffset {
		return "", 0, 0, errInvalidParams
	}
	return creatorID, limit, offset, nil
}

func decodeStrictNonNegativeInt(raw any) (int, error) {
	v, ok := raw.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errInvalidParams
	}
	if v < 0 || math.Trunc(v) != v {
		return 0, errInvalidParams
	}
	maxInt := float64(^uint(0) >> 1)
	if v > maxInt {
		return 0, errInvalidParams
	}
	return int(v), nil
}
