package lzacdkutil

// Version is the accelerator release. It is recorded in SSM Parameter Store
// at deployment so operators and the finalize stage can tell which release
// an installation runs.
const Version = "1.5.0"
