//go:build unit

package scheduler_test

const queuesOutput = `Name: default
    Users        : alice:bob
    Groups       : users
    MinTime      : 00:05:00
    MaxTime      : 06:00:00
    MaxRunning   : 4
    MaxQueued    : 20
    MaxUserNodes : 5
    MaxNodeHours : 100
    TotalNodes   : 10
    State        : running

Name: knl_7210
    Users        : alice
    MaxTime      : 12:00:00
    State        : running

`

const jobsOutput = `JobID: 101
    JobName        : train
    User           : alice
    WallTime       : 01:00:00
    QueuedTime     : 00:05:00
    RunTime        : 00:10:00
    TimeRemaining  : 00:50:00
    Nodes          : 2
    Procs          : 128
    State          : running
    Location       : nid[3-4]
    Queue          : default
    User_Hold      : False
    attrs          : {'mcdram': 'cache', 'numa': 'quad'}
    Envs           : OMP_NUM_THREADS=4:MODE=fast
    Dependencies   : 99:100
    user_list      : alice:bob
    Project        : climate

JobID: 102
    JobName        : eval
    User           : alice
    WallTime       : 00:30:00
    QueuedTime     : 00:01:00
    Nodes          : 1
    State          : queued
    Location       : None
    Queue          : knl_7210

JobID: 103
    User           : bob
    State          : queued
    Queue          : default

JobID: 104
    User           : alice
    State          : queued
    Queue          : vanished
`
