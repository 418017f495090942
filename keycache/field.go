package keycache

// Field names one of the byte strings a cache Entry may hold or derive.
// Distinct fields are never conflated even when two would coincidentally
// hold the same bytes — see FieldMK and FieldLP2, which the source this
// module is modeled on notoriously confused.
type Field int

const (
	// FieldL is the username's raw bytes. Always computable.
	FieldL Field = iota

	// FieldP is the password's raw bytes. A leaf input; Require fails
	// with ErrMissingInput if it was never supplied.
	FieldP

	// FieldLP is L concatenated with P.
	FieldLP

	// FieldRA is the recovery answers, newline-joined. A leaf input.
	FieldRA

	// FieldLRA is L concatenated with RA.
	FieldLRA

	// FieldL1 is scrypt(L, SNRP1), the server-side username handle.
	FieldL1

	// FieldL4 is scrypt(L, SNRP4), the local key for ERQ and ESyncKey.
	FieldL4

	// FieldLP1 is scrypt(LP, SNRP1), the password server-auth token.
	FieldLP1

	// FieldLP2 is scrypt(LP, SNRP2), the local key for EMK and ELRA3.
	FieldLP2

	// FieldLRA1 is scrypt(LRA, SNRP1), the recovery server-auth token.
	FieldLRA1

	// FieldLRA3 is scrypt(LRA, SNRP3), the local key for ELP2.
	FieldLRA3

	// FieldMK is the account's master data key, decrypted from EMK
	// under LP2.
	FieldMK

	// FieldSyncKey is the sync repo access key, decrypted from
	// ESyncKey under L4.
	FieldSyncKey

	// FieldRQ is the recovery questions text, decrypted from ERQ under
	// L4.
	FieldRQ
)

func (f Field) String() string {
	switch f {
	case FieldL:
		return "L"
	case FieldP:
		return "P"
	case FieldLP:
		return "LP"
	case FieldRA:
		return "RA"
	case FieldLRA:
		return "LRA"
	case FieldL1:
		return "L1"
	case FieldL4:
		return "L4"
	case FieldLP1:
		return "LP1"
	case FieldLP2:
		return "LP2"
	case FieldLRA1:
		return "LRA1"
	case FieldLRA3:
		return "LRA3"
	case FieldMK:
		return "MK"
	case FieldSyncKey:
		return "syncKeyHex"
	case FieldRQ:
		return "RQ"
	default:
		return "unknown"
	}
}
