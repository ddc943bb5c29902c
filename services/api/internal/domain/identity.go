package domain

// AccountID identifies a buyer or seller. Identity resolution happens at the
// transport edge; the ledger treats it as an opaque value.
type AccountID string
