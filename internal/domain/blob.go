package domain

import "fmt"

// BlobKind namespaces stored blobs by the kind of record that owns them.
type BlobKind string

const (
	BlobKindUser    BlobKind = "user"
	BlobKindProduct BlobKind = "product"
)

// Dir is the namespace directory (or object prefix) for the kind.
func (k BlobKind) Dir() string {
	switch k {
	case BlobKindUser:
		return "users"
	case BlobKindProduct:
		return "products"
	default:
		return ""
	}
}

// Prefix is the filename prefix identifying the owner, e.g. "user_42_".
func (k BlobKind) Prefix(ownerID int64) string {
	return fmt.Sprintf("%s_%d_", k, ownerID)
}

func (k BlobKind) Valid() bool {
	return k == BlobKindUser || k == BlobKindProduct
}
