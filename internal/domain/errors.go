package domain

import "errors"

var (
	ErrParse        = errors.New("could not parse price")
	ErrInvalidPrice = errors.New("invalid price")
	ErrUnknownAsset = errors.New("unknown asset")
	ErrInvalidDate  = errors.New("invalid date")
)
