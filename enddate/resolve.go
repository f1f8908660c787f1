package enddate

import "time"

// lookbackDays is the default report window (four weeks) used when a
// workspace has no stored end date.
const lookbackDays = 28

// DetermineStartDate decides the effective start date for a workspace's next
// report. With a stored end date it returns that date plus one calendar day,
// preserving time of day and timezone, so successive runs cover contiguous,
// non-overlapping ranges. Without one it returns now minus four weeks in the
// local timezone.
func (s *Store) DetermineStartDate(workspaceID int64) (time.Time, error) {
	stored, ok, err := s.LastEndDate(workspaceID)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return stored.AddDate(0, 0, 1), nil
	}
	return s.now().AddDate(0, 0, -lookbackDays), nil
}
