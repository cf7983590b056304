package domain

// KeyPrefix namespaces every store key written by this module.
const KeyPrefix = "sphindex:"
