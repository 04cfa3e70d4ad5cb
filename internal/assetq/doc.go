// Package assetq is the asset element query: the generic element query core
// extended with volume, folder, file and transform criteria.
//
// Handle and folder-tree criteria are resolved through collaborators at
// execution time, so a query built once sees folders moved or volumes
// renamed since it was configured.
package assetq
