// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

//go:build integration

package testinfra

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	wire "github.com/tomtom215/cardmarket/internal/models/commerce"
)

const (
	adminVariantPrefix = "/admin/products/variants/"
	storeVariantPrefix = "/store/products/variants/"
)

// CommerceCapture is one request received by MockCommerceServer.
type CommerceCapture struct {
	Method  string
	Path    string
	Headers http.Header
}

// MockCommerceServer is a stand-in for the commerce backend's variant endpoints.
// Variants registered with SetVariant are served by both the admin and store
// endpoints; AdminStatus and StoreStatus force error responses.
type MockCommerceServer struct {
	Server *httptest.Server

	mu          sync.Mutex
	variants    map[string]wire.AdminVariant
	captures    []CommerceCapture
	adminStatus int
	storeStatus int
}

// NewMockCommerceServer starts the server and closes it when the test ends.
func NewMockCommerceServer(t *testing.T) *MockCommerceServer {
	t.Helper()

	m := &MockCommerceServer{variants: make(map[string]wire.AdminVariant)}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server base URL.
func (m *MockCommerceServer) URL() string {
	return m.Server.URL
}

// SetVariant registers or replaces a variant.
func (m *MockCommerceServer) SetVariant(v wire.AdminVariant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variants[v.ID] = v
}

// SetAdminStatus forces every admin request to answer with status (0 restores normal behavior).
func (m *MockCommerceServer) SetAdminStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminStatus = status
}

// SetStoreStatus forces every store request to answer with status (0 restores normal behavior).
func (m *MockCommerceServer) SetStoreStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeStatus = status
}

// Captures returns a copy of all captured requests.
func (m *MockCommerceServer) Captures() []CommerceCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommerceCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// CountPrefix counts captured requests whose path starts with prefix.
func (m *MockCommerceServer) CountPrefix(prefix string) int {
	n := 0
	for _, c := range m.Captures() {
		if strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

func (m *MockCommerceServer) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.captures = append(m.captures, CommerceCapture{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
	})
	adminStatus, storeStatus := m.adminStatus, m.storeStatus
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/health":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))

	case strings.HasPrefix(r.URL.Path, adminVariantPrefix):
		if adminStatus != 0 {
			http.Error(w, http.StatusText(adminStatus), adminStatus)
			return
		}
		v, ok := m.lookup(strings.TrimPrefix(r.URL.Path, adminVariantPrefix))
		if !ok {
			http.Error(w, `{"message":"variant not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, wire.AdminVariantResponse{Variant: v})

	case strings.HasPrefix(r.URL.Path, storeVariantPrefix):
		if storeStatus != 0 {
			http.Error(w, http.StatusText(storeStatus), storeStatus)
			return
		}
		v, ok := m.lookup(strings.TrimPrefix(r.URL.Path, storeVariantPrefix))
		if !ok {
			http.Error(w, `{"message":"variant not found"}`, http.StatusNotFound)
			return
		}
		qty := v.InventoryQuantity
		writeJSON(w, wire.StoreVariantResponse{Variant: wire.StoreVariant{
			ID:                v.ID,
			SKU:               v.SKU,
			ManageInventory:   v.ManageInventory,
			AllowBackorder:    v.AllowBackorder,
			InventoryQuantity: &qty,
			ReservedQuantity:  v.ReservedQuantity,
			InventoryItems:    v.InventoryItems,
		}})

	default:
		http.NotFound(w, r)
	}
}

func (m *MockCommerceServer) lookup(id string) (wire.AdminVariant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variants[id]
	return v, ok
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
