// Package config provides configuration parsing for pegelboard.
//
// The configuration is stored in pegel.json or pegel.yaml. Both are checked
// against the same embedded JSON Schema before they are decoded, so a typo
// in a key is reported instead of silently ignored.
//
// # Configuration File Structure
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	  readTimeout: 60s
//	  metricsPath: /metrics
//	waters: [RHEIN, ELBE, MOSEL]
//	amounts: [25, 50, 100]
//	source:
//	  url: https://www.pegelonline.wsv.de/webservices/rest-api/v2/stations.json?waters={WATER}&ids={IDS}&includeTimeseries=true&includeCurrentMeasurement=true&includeCharacteristicValues=true
//	  cacheTTL: 5m
//	log:
//	  level: info
//	  format: text
//	params:
//	  - name: lang
//	    values: [de, en]
//	    default: de
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
