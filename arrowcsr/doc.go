// Package arrowcsr connects the accumulator to Apache Arrow.
//
// Upstream, a RecordSource reads COO batches from an array.RecordReader
// whose records carry the columns soma_dim_0 (row join ids), soma_dim_1
// (column join ids) and soma_data (values). Id columns are viewed in place;
// each record stays retained until its chunk has been appended.
//
// Downstream, Export wraps the buffers of a csr.Matrix as Arrow arrays
// without copying, and Import validates Arrow arrays back into a matrix.
package arrowcsr
