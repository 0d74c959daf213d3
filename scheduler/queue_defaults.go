package scheduler

// QueueDefault holds the capacity figures used when qstat does not report them.
type QueueDefault struct {
	MaxUserNodes int `yaml:"maxusernodes" json:"maxusernodes"`
	TotalNodes   int `yaml:"totalnodes" json:"totalnodes"`
}

// QueueDefaults maps a queue name to its fallback capacity.
type QueueDefaults map[string]QueueDefault

// Lookup returns the entry for name from d, then from the built-in table.
func (d QueueDefaults) Lookup(name string) (QueueDefault, bool) {
	if v, ok := d[name]; ok {
		return v, true
	}
	v, ok := builtinQueueDefaults[name]
	return v, ok
}

// BuiltinQueueDefaults returns a copy of the built-in table.
func BuiltinQueueDefaults() QueueDefaults {
	out := make(QueueDefaults, len(builtinQueueDefaults))
	for k, v := range builtinQueueDefaults {
		out[k] = v
	}
	return out
}

// Node counts of the JLSE queues, as listed on the JLSE wiki.
// Never modified at runtime.
var builtinQueueDefaults = QueueDefaults{
	"R.sc_workshop":            {0, 0},
	"atos":                     {1, 1},
	"cl":                       {0, 0},
	"comanche_B1":              {0, 0},
	"comanche_B1_smt2_noturbo": {0, 0},
	"comanche_B1_smt2_turbo":   {0, 0},
	"comanche_B1_smt4_noturbo": {0, 0},
	"comanche_B1_smt4_turbo":   {0, 0},
	"dgx":                      {1, 1},
	"epyc_7601":                {2, 2},
	"firestones":               {1, 1},
	"fpga_385a":                {1, 1},
	"gomez":                    {4, 4},
	"gomez_dual_hca":           {1, 1},
	"gpu_mules":                {0, 0},
	"gpu_power9_v100_smx2":     {1, 1},
	"gpu_rtx8000":              {1, 1},
	"gpu_v100_smx2":            {3, 3},
	"iris":                     {0, 0},
	"iris_debug":               {0, 0},
	"it":                       {13, 13},
	"k20x":                     {1, 1},
	"knl_7210":                 {10, 10},
	"knl_7250":                 {2, 2},
	"mustangs":                 {2, 2},
	"nurburg":                  {0, 0},
	"skylake_8176":             {1, 1},
	"skylake_8180":             {12, 12},
	"skylake_8180_skylake12":   {1, 1},
	"skylake_p":                {0, 0},
	"thing":                    {8, 8},
}
