package core

// CheckWrite separates a create/update result list, logs every failed entry under msg
// and returns the data of the first successful entry.
// Any failed entry yields a *WriteError reporting the first failure; an empty list yields ErrEmptyResult.
func CheckWrite(logger Logger, msg string, results []RecordResult) (Record, error) {
	successful, failed := PartitionResults(results)
	if len(failed) > 0 {
		logger.Error(msg, map[string]interface{}{"failures": failed})
		return nil, &WriteError{Failures: failed}
	}
	if len(successful) == 0 {
		return nil, ErrEmptyResult
	}
	return successful[0].Data, nil
}

// CheckDelete separates a delete result list & logs every failed entry under msg.
// It reports true as soon as one entry succeeded; a *WriteError is only returned when none did.
func CheckDelete(logger Logger, msg string, results []RecordResult) (bool, error) {
	successful, failed := PartitionResults(results)
	if len(failed) > 0 {
		logger.Error(msg, map[string]interface{}{"failures": failed})
	}
	if len(successful) > 0 {
		return true, nil
	}
	if len(failed) > 0 {
		return false, &WriteError{Failures: failed}
	}
	return false, nil
}
