package edge

import "errors"

// ErrAlreadyExists is returned by AddApplication for a duplicate id.
var ErrAlreadyExists = errors.New("edge: application already exists")

// ErrNotFound is returned by RemoveApplication/RecordUse for an id not
// hosted by the EDC.
var ErrNotFound = errors.New("edge: application not found")

// ErrApplicationNotFound is returned by Network.UseApplication when no EDC
// hosts the requested application id.
var ErrApplicationNotFound = errors.New("edge: application not found in network")
