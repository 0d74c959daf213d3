package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	durationValue = `\d+:\d+:\d+`
	intValue      = `\d+`
	wordValue     = `\w+`
	nameValue     = `[\w.\-]+`
	listValue     = `[\w.\-]+(?::[\w.\-]+)*`
	locationValue = `[\w.\-]+(?:\[\d+-\d+\])?(?:,[\w.\-]+(?:\[\d+-\d+\])?)*`
	envsValue     = `[\w.\-]+=[\w.\-/]*(?::[\w.\-]+=[\w.\-/]*)*`
	depsValue     = `\d+(?::\d+)*`
)

// labelRe builds the extractor for "Label : value". The label has to start a
// word, so "Name" never matches inside "JobName".
func labelRe(label, value string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)(?:^|\W)` + label + `[ \t]*:[ \t]*(` + value + `)`)
}

// Job record labels, as printed by `qstat -f -l`.
var (
	jobIDRe         = labelRe("JobID", intValue)
	jobUserRe       = labelRe("User", wordValue)
	jobUsersRe      = labelRe("user_list", listValue)
	jobNameRe       = labelRe("JobName", `[^\n]*`)
	jobWallTimeRe   = labelRe("WallTime", durationValue)
	jobRunTimeRe    = labelRe("RunTime", durationValue)
	jobStartTimeRe  = labelRe("StartTime", durationValue)
	jobQueuedTimeRe = labelRe("QueuedTime", durationValue)
	jobRemainingRe  = labelRe("TimeRemaining", durationValue)
	jobNodesRe      = labelRe("Nodes", intValue)
	jobProcsRe      = labelRe("Procs", intValue)
	jobLocationRe   = labelRe("Location", locationValue)
	jobQueueRe      = labelRe("Queue", nameValue)
	jobStateRe      = labelRe("State", wordValue)
	jobUserHoldRe   = labelRe("User_?Hold", "True|False")
	jobAttrsRe      = labelRe("attrs", `\{[^\n]*\}`)
	jobEnvsRe       = labelRe("Envs", envsValue)
	jobDepsRe       = labelRe("Dependencies", depsValue)
	jobProjectRe    = labelRe("Project", listValue)
	jobNotifyRe     = labelRe("Notify", `\S+`)
)

// Queue record labels, as printed by `qstat -Q -l`.
var (
	queueNameRe         = labelRe("Name", nameValue)
	queueUsersRe        = labelRe("Users", `[\w.\-:]+`)
	queueGroupsRe       = labelRe("Groups", `[\w.\-:]+`)
	queueMinTimeRe      = labelRe("MinTime", durationValue)
	queueMaxTimeRe      = labelRe("MaxTime", durationValue)
	queueMaxRunningRe   = labelRe("MaxRunning", intValue)
	queueMaxQueuedRe    = labelRe("MaxQueued", intValue)
	queueMaxUserNodesRe = labelRe("MaxUserNodes", intValue)
	queueMaxNodeHoursRe = labelRe("MaxNodeHours", intValue)
	queueTotalNodesRe   = labelRe("TotalNodes", intValue)
	queueStateRe        = labelRe("State", wordValue)
)

var (
	blankLineRe = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	fragmentRe  = regexp.MustCompile(`^([a-zA-Z_.\-]+)(\d+)?(?:\[(\d+)-(\d+)\])?`)
)

// SplitRecords splits a multi-record qstat output on blank lines and drops
// empty records.
func SplitRecords(out string) []string {
	var records []string
	for _, r := range blankLineRe.Split(out, -1) {
		if strings.TrimSpace(r) != "" {
			records = append(records, r)
		}
	}
	return records
}

// find returns the value of the last occurrence of the label in record.
func find(re *regexp.Regexp, record string) (string, bool) {
	matches := re.FindAllStringSubmatch(record, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

func findString(re *regexp.Regexp, record string) string {
	v, _ := find(re, record)
	return strings.TrimSpace(v)
}

func findInt(re *regexp.Regexp, record string) (int, bool, error) {
	v, ok := find(re, record)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func findDuration(re *regexp.Regexp, record string) (*time.Duration, error) {
	v, ok := find(re, record)
	if !ok {
		return nil, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func findList(re *regexp.Regexp, record string) []string {
	v, ok := find(re, record)
	if !ok || v == "" {
		return []string{}
	}
	return strings.Split(v, ":")
}

func findEnvs(record string) map[string]string {
	envs := map[string]string{}
	v, ok := find(jobEnvsRe, record)
	if !ok {
		return envs
	}
	for _, kv := range strings.Split(v, ":") {
		k, val, _ := strings.Cut(kv, "=")
		envs[k] = val
	}
	return envs
}

func findDependencies(record string) []int {
	deps := []int{}
	v, ok := find(jobDepsRe, record)
	if !ok {
		return deps
	}
	for _, s := range strings.Split(v, ":") {
		if id, err := strconv.Atoi(s); err == nil {
			deps = append(deps, id)
		}
	}
	return deps
}

func findLocation(record string) []string {
	v, ok := find(jobLocationRe, record)
	if !ok || v == "None" {
		return []string{}
	}
	return ExpandLocation(v)
}

// maxLocationSpan bounds the number of hosts a single range expands to.
const maxLocationSpan = 100000

// ExpandLocation turns a comma-separated host list into host names.
// "nid[3-5]" becomes nid3, nid4, nid5; fragments without a range, with a
// number right before the range, or with a range wider than maxLocationSpan
// are kept verbatim.
func ExpandLocation(location string) []string {
	hosts := []string{}
	for _, fragment := range strings.Split(location, ",") {
		if fragment == "" {
			continue
		}
		m := fragmentRe.FindStringSubmatch(fragment)
		if m == nil || m[2] != "" || m[3] == "" || m[4] == "" {
			hosts = append(hosts, fragment)
			continue
		}
		start, err1 := strconv.Atoi(m[3])
		end, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil || end-start > maxLocationSpan {
			hosts = append(hosts, fragment)
			continue
		}
		for i := start; i <= end; i++ {
			hosts = append(hosts, m[1]+strconv.Itoa(i))
		}
	}
	return hosts
}

const maxDurationSeconds = int64(math.MaxInt64 / int64(time.Second))

// ParseDuration parses the scheduler's H:MM:SS notation. Hours may exceed 24.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected H:MM:SS", s)
	}
	var seconds int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		seconds = seconds*60 + n
	}
	if seconds > maxDurationSeconds {
		return 0, fmt.Errorf("invalid duration %q: out of range", s)
	}
	return time.Duration(seconds) * time.Second, nil
}

// FormatDuration prints d as H:MM:SS, the form qsub -t accepts.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
