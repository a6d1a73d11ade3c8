package api

import (
	"net/http"
	"strconv"

	"github.com/silens-indexer/internal/service"
	"github.com/silens-indexer/internal/types"
)

// parsePage reads limit/offset query parameters; invalid values fall back to
// the defaults applied by Page.Normalize
func parsePage(r *http.Request) service.Page {
	var p service.Page
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		p.Offset = v
	}
	return p.Normalize()
}

func queryInt16Ptr(r *http.Request, key string) *int16 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 16)
	if err != nil {
		return nil
	}
	out := int16(v)
	return &out
}

func queryInt64Ptr(r *http.Request, key string) *int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryUint64Ptr(r *http.Request, key string) *uint64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBoolPtr(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v := raw == "true"
	return &v
}

func queryModelStatusPtr(r *http.Request) *types.ModelStatus {
	v := queryInt16Ptr(r, "status")
	if v == nil {
		return nil
	}
	status := types.ModelStatus(*v)
	return &status
}

func queryProposalStatusPtr(r *http.Request) *types.ProposalStatus {
	v := queryInt16Ptr(r, "status")
	if v == nil {
		return nil
	}
	status := types.ProposalStatus(*v)
	return &status
}

func queryProposalTypePtr(r *http.Request) *types.ProposalType {
	v := queryInt16Ptr(r, "proposalType")
	if v == nil {
		return nil
	}
	pt := types.ProposalType(*v)
	return &pt
}

// pathID parses a numeric path segment into a Quantity
func pathID(raw string) (types.Quantity, bool) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return types.Quantity(v), true
}
