// Package data supplies labelled mini-batches to the training loop.
//
// A Dataset holds examples in memory. A Loader cuts a Dataset into batches
// and, when configured, reshuffles the order at the start of every epoch.
// Datasets come from local IDX files (MNIST, Fashion-MNIST) or from the
// Synthetic generator when no files are available.
package data
