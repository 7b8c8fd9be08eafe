package domain

import "errors"

var ErrOrderNotFound = errors.New("order not found")
var ErrItemNotFound = errors.New("item not found")
var ErrPersonNotFound = errors.New("person not found")
var ErrReadNotFound = errors.New("item read not found")
var ErrItemAttached = errors.New("item already attached to an active order")
var ErrDuplicateTag = errors.New("tag already registered")
var ErrInvalidDates = errors.New("end date before start date")
var ErrBlankName = errors.New("name must not be blank")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
