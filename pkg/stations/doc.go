// Package stations loads gauge stations and turns them into table pages.
//
// A Source fetches the raw stations of one water. HTTPSource reads them
// from a remote API, S3Source from a JSON snapshot object, and CachedSource
// memoizes either of them. DataSource combines a Source with filtering,
// sorting and slicing into the function a table widget pages through:
//
//	page, err := stations.DataSource(src, "RHEIN")(ctx, stations.Query{
//	    Amount:  25,
//	    Sort:    stations.Sort{Prop: "name", Dir: "asc"},
//	    Filters: []string{"<300"},
//	})
//
// Filters follow a small language:
//
//	station:ID   fetch only the station with this id (remote filter)
//	<N, >N       compare the current level against N
//	prop:<N      compare the integer prefix of prop against N
//	!re          keep rows where no field matches re
//	re           keep rows where some field matches re
package stations
