package usecase

// RecoverAsError is exported for testing
var RecoverAsError = recoverAsError

// FailureMessage is exported for testing
var FailureMessage = failureMessage
