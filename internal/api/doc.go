// Package api provides the REST client for the alert backend.
//
// Endpoints:
//   - GET /free?page&size   paginated free-tier alerts
//   - GET /paid?page&size&sort   paid alerts, bearer-token authenticated
//
// The paid endpoint is known to answer in three wire shapes (bare array,
// data-wrapped array, pre-paginated object); all three normalize into one
// canonical model.Page. Error policy differs by tier: the free path
// degrades to an empty page after bounded silent retries, the paid path
// propagates typed errors.
package api
