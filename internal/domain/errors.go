package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrReportNotFound     = errors.New("report not found")
	ErrReportNotParsed    = errors.New("report is not parsed")
	ErrReportNotPayed     = errors.New("report is not payed")
	ErrReportAlreadyPayed = errors.New("report already payed")
	ErrPaymentInProgress  = errors.New("report payment in progress")
	ErrPriceNotSet        = errors.New("report has no price yet")
	ErrUnknownBroker      = errors.New("unknown broker")
	ErrTooManyReports     = errors.New("too many reports for user")
	ErrFilenameTooLong    = errors.New("filename exceeds maximum length")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
)
