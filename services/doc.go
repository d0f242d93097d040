/*
# GridVeil Services Package

The services package exposes the metering ledger over HTTP and supplies
its production persistence and notification backends.

## Components

### HTTPLedger (`http_ledger.go`)

Wraps `ledger.Ledger` with a chi route registrar. Endpoints:

  - `POST /sessions` - Submit one encrypted session record
  - `GET /sessions/{id}` - Fetch a stored session record
  - `POST /windows/{key}/accumulate` - Fold encrypted deltas into a window
  - `GET /windows/{key}` - Read a window's encrypted aggregate
  - `POST /windows/{key}/forecast` - Request a demand forecast reveal
  - `POST /windows/{key}/load-balance` - Request a load-balance reveal
  - `POST /regions/{key}/site-suggestion` - Request a site-suggestion reveal
  - `POST /oracle/callback` - Oracle-initiated result delivery
  - `GET /results/{requestID}` - Poll a revealed result

Ciphertexts travel base64-encoded in JSON bodies; the service never
inspects them.

### Stores (`postgres_store.go`)

`PostgresStore` implements `ledger.Store` on PostgreSQL: sequential
session records (BIGSERIAL ids), per-window aggregates, per-request
correlations and revealed results, ciphertexts as BYTEA. The in-memory
twin used by tests lives beside the core in the ledger package.

### Notifications (`notifier.go`)

`WebhookNotifier` fans ledger events out to subscriber URLs as JSON
POSTs. Delivery is fire-and-forget: failures are logged and never block
or fail the originating operation.
*/
package services
