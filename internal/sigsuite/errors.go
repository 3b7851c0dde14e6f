package sigsuite

import "github.com/axm-labs/shard/internal/errs"

var errInvalidKeySize = errs.New(errs.CodeSigInvalid, "", "secret key has an unrecognized size for this suite")
