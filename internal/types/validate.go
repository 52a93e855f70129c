package types

// ValidateID rejects malformed lookup keys before either store is touched.
// The primary store would reject them too, but with a store-internal error
// that is useless to the caller.
func ValidateID(id string) error {
	if id == "" {
		return Err(ErrInvalidID, nil, "company id is missing")
	}
	if len(id) < IDMinLength {
		return Err(ErrInvalidID, nil, "company id too short")
	}
	return nil
}
